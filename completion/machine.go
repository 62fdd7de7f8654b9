// Package completion implements the task/category completion and cooldown
// state machine. Every record is either Available (the zero record) or
// Locked (completed with a cooldown end timestamp); once the wall clock
// reaches the timestamp the record reads as Available again. Expiry is lazy:
// reads never rewrite storage, records are superseded on the next completion
// or an explicit Tick.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindTask     Kind = "task"
	KindCategory Kind = "category"
	// KindSurvey is the short retake lock of the standalone survey wizard,
	// separate from the catalog task cooldown.
	KindSurvey Kind = "survey"
)

// Record is the stored state for one task or category on one device.
// CooldownEnd is unix milliseconds, 0 when no cooldown is set.
type Record struct {
	Completed   bool  `json:"completed"`
	CooldownEnd int64 `json:"cooldown_end"`
}

// StateKey is the single key scheme for completion state. The legacy client
// used several overlapping prefixes for the same concept; they are
// deliberately not preserved.
func StateKey(deviceID string, kind Kind, id int) string {
	return fmt.Sprintf("state:%s:%s:%d", deviceID, kind, id)
}

type TaskStatus struct {
	Completed bool `json:"completed"`
}

type CategoryStatus struct {
	Complete          bool `json:"complete"`
	OnCooldown        bool `json:"on_cooldown"`
	CooldownRemaining int  `json:"cooldown_remaining_minutes"`
}

type Machine struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Machine {
	return &Machine{store: store, now: time.Now}
}

// NewWithClock injects a clock; used by tests.
func NewWithClock(store Store, now func() time.Time) *Machine {
	return &Machine{store: store, now: now}
}

// readRecord loads and normalizes one record. Absent keys, malformed JSON
// and store errors all fail open to the Available zero record.
func (m *Machine) readRecord(ctx context.Context, key string) Record {
	raw, err := m.store.GetItem(ctx, key)
	if err != nil || raw == "" {
		return Record{}
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}
	}
	return rec
}

func (m *Machine) writeRecord(ctx context.Context, key string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return m.store.SetItem(ctx, key, string(raw))
}

// expired reports whether a record's cooldown has lapsed. The boundary
// instant counts as expired: at now == cooldownEnd the state is Available.
func (m *Machine) expired(rec Record) bool {
	return rec.CooldownEnd > 0 && m.now().UnixMilli() >= rec.CooldownEnd
}

// TaskStatus reports whether a task currently counts as completed on the
// given device. Reads are pure: an elapsed cooldown flips the in-memory view
// without touching storage.
func (m *Machine) TaskStatus(ctx context.Context, deviceID string, taskID int) TaskStatus {
	return m.Status(ctx, deviceID, KindTask, taskID)
}

// CategoryStatus derives the category state fresh on every call: Complete is
// the AND over the member tasks' current statuses, short-circuiting on the
// first incomplete one. The stored category flag is never trusted for
// Complete because a member task's cooldown can expire independently of the
// category clock; only the category's own cooldown record feeds OnCooldown.
func (m *Machine) CategoryStatus(ctx context.Context, deviceID string, categoryID int, taskIDs []int) CategoryStatus {
	complete := true
	for _, id := range taskIDs {
		if !m.TaskStatus(ctx, deviceID, id).Completed {
			complete = false
			break
		}
	}
	if len(taskIDs) == 0 {
		complete = false
	}

	rec := m.readRecord(ctx, StateKey(deviceID, KindCategory, categoryID))
	status := CategoryStatus{Complete: complete}
	if rec.CooldownEnd > 0 && !m.expired(rec) {
		status.OnCooldown = true
		remaining := rec.CooldownEnd - m.now().UnixMilli()
		status.CooldownRemaining = int((remaining + 59999) / 60000)
	}
	return status
}

// RecordTask marks a task completed with a cooldown of the given duration.
func (m *Machine) RecordTask(ctx context.Context, deviceID string, taskID int, cooldown time.Duration) error {
	return m.Record(ctx, deviceID, KindTask, taskID, cooldown)
}

// Record marks any keyed state completed with a cooldown of the given
// duration.
func (m *Machine) Record(ctx context.Context, deviceID string, kind Kind, id int, cooldown time.Duration) error {
	rec := Record{
		Completed:   true,
		CooldownEnd: m.now().Add(cooldown).UnixMilli(),
	}
	return m.writeRecord(ctx, StateKey(deviceID, kind, id), rec)
}

// Status reports the current state of any keyed record.
func (m *Machine) Status(ctx context.Context, deviceID string, kind Kind, id int) TaskStatus {
	rec := m.readRecord(ctx, StateKey(deviceID, kind, id))
	if m.expired(rec) {
		return TaskStatus{}
	}
	return TaskStatus{Completed: rec.Completed}
}

// RecordCategory writes the category record once every member task is
// currently complete. It is never written partially: when any task is still
// incomplete nothing is stored and false is returned. The category cooldown
// clock is independent of the member tasks' clocks.
func (m *Machine) RecordCategory(ctx context.Context, deviceID string, categoryID int, taskIDs []int, cooldown time.Duration) (bool, error) {
	for _, id := range taskIDs {
		if !m.TaskStatus(ctx, deviceID, id).Completed {
			return false, nil
		}
	}
	if len(taskIDs) == 0 {
		return false, nil
	}
	rec := Record{
		Completed:   true,
		CooldownEnd: m.now().Add(cooldown).UnixMilli(),
	}
	if err := m.writeRecord(ctx, StateKey(deviceID, KindCategory, categoryID), rec); err != nil {
		return false, err
	}
	return true, nil
}

// Tick rewrites an expired record back to the zero state. This is the only
// place reads cause writes; it mirrors the periodic clear the client
// performed and keeps storage from accumulating stale Locked records.
func (m *Machine) Tick(ctx context.Context, deviceID string, kind Kind, id int) error {
	key := StateKey(deviceID, kind, id)
	rec := m.readRecord(ctx, key)
	if !m.expired(rec) {
		return nil
	}
	return m.writeRecord(ctx, key, Record{})
}
