package store

import "database/sql"

// UpsertSchedule creates or re-enables a schedule for the exact
// (group, hour, minute, feature) tuple. A matching disabled row is re-enabled
// in place, keeping its id stable; otherwise a new enabled row is created.
func (s *Store) UpsertSchedule(groupID string, hour, minute int, feature string) (GroupSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := GroupSchedule{GroupID: groupID, Hour: hour, Minute: minute, Feature: feature, Enabled: true}

	var existing int64
	err := s.db.QueryRow(`
		SELECT id FROM group_schedules
		WHERE group_id = ? AND hour = ? AND minute = ? AND feature = ?`,
		groupID, hour, minute, feature).Scan(&existing)
	if err == nil {
		if _, err := s.db.Exec(`UPDATE group_schedules SET enabled=1 WHERE id=?`, existing); err != nil {
			return GroupSchedule{}, err
		}
		job.ID = existing
		return job, nil
	}
	if err != sql.ErrNoRows {
		return GroupSchedule{}, err
	}

	res, err := s.db.Exec(`
		INSERT INTO group_schedules (group_id, hour, minute, feature, enabled)
		VALUES (?, ?, ?, ?, 1)`, groupID, hour, minute, feature)
	if err != nil {
		return GroupSchedule{}, err
	}
	job.ID, err = res.LastInsertId()
	if err != nil {
		return GroupSchedule{}, err
	}
	return job, nil
}

// ListSchedules returns all schedules for a group ordered by time of day.
func (s *Store) ListSchedules(groupID string) ([]GroupSchedule, error) {
	rows, err := s.db.Query(`
		SELECT id, group_id, hour, minute, feature, enabled, last_run_at
		FROM group_schedules
		WHERE group_id = ?
		ORDER BY hour ASC, minute ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// DueSchedules returns enabled schedules matching the given local
// (hour, minute), in ascending id order so ticks process jobs deterministically.
func (s *Store) DueSchedules(hour, minute int) ([]GroupSchedule, error) {
	rows, err := s.db.Query(`
		SELECT id, group_id, hour, minute, feature, enabled, last_run_at
		FROM group_schedules
		WHERE enabled = 1 AND hour = ? AND minute = ?
		ORDER BY id ASC`, hour, minute)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// RemoveSchedule deletes a schedule by (id, group) pair. The group id guard
// prevents cross-group deletion by guessed id.
func (s *Store) RemoveSchedule(groupID string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM group_schedules WHERE id = ? AND group_id = ?`, id, groupID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TouchScheduleRun records a fire attempt. Called after every attempt,
// success or failure; last_run_at is a liveness signal, not a delivery
// guarantee.
func (s *Store) TouchScheduleRun(id int64, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE group_schedules SET last_run_at = ? WHERE id = ?`, at, id)
	return err
}

func scanSchedules(rows *sql.Rows) ([]GroupSchedule, error) {
	var out []GroupSchedule
	for rows.Next() {
		var job GroupSchedule
		var enabled int
		var lastRun *int64
		if err := rows.Scan(&job.ID, &job.GroupID, &job.Hour, &job.Minute, &job.Feature, &enabled, &lastRun); err != nil {
			return nil, err
		}
		job.Enabled = enabled != 0
		job.LastRunAt = lastRun
		out = append(out, job)
	}
	return out, rows.Err()
}
