// Package ingest normalizes inbound chat events and writes them to the log.
package ingest

// Event is the closed set of inbound event kinds. Sources decode their wire
// format into one of these; the Collector is a single exhaustive switch.
type Event interface {
	isEvent()
}

// Segment is one structured element of a message body.
type Segment struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID string    `json:"message_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Private   bool      `json:"private,omitempty"`
	Segments  []Segment `json:"segments,omitempty"`
	RawText   string    `json:"raw_text,omitempty"`
	Time      int64     `json:"time,omitempty"`
}

// Recall is a retraction notice for a previously sent message.
type Recall struct {
	MessageID string `json:"message_id"`
	Time      int64  `json:"time,omitempty"`
}

// Membership actions.
const (
	MemberJoin  = "join"
	MemberLeave = "leave"
)

// MemberChange is a group membership event.
type MemberChange struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
	Action  string `json:"action"` // join, leave
	Time    int64  `json:"time,omitempty"`
}

// FileUpload is a group file upload event.
type FileUpload struct {
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Time     int64  `json:"time,omitempty"`
}

func (*Message) isEvent()      {}
func (*Recall) isEvent()       {}
func (*MemberChange) isEvent() {}
func (*FileUpload) isEvent()   {}
