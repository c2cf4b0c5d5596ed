package stats

// Range is a caller-supplied time window. Zero fields are unset: End defaults
// to now, and when Start is unset it is derived as End minus max(1, Days)
// days (Days falling back to the configured stat period). An explicit Start
// makes Days irrelevant.
type Range struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
	Days  int   `json:"days,omitempty"`
}

const daySeconds = 86400

// Resolve turns a Range into a concrete [start, end] pair.
func (r Range) Resolve(defaultDays int, now int64) (int64, int64) {
	end := r.End
	if end == 0 {
		end = now
	}
	if r.Start != 0 {
		return r.Start, end
	}
	days := r.Days
	if days == 0 {
		days = defaultDays
	}
	if days < 1 {
		days = 1
	}
	return end - int64(days)*daySeconds, end
}
