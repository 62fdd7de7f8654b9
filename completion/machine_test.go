package completion

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMachine() (*Machine, *fakeClock, *MemoryStore) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	return NewWithClock(store, clock.Now), clock, store
}

func TestTaskCompletionThenExpiry(t *testing.T) {
	m, clock, _ := newTestMachine()
	ctx := context.Background()

	if m.TaskStatus(ctx, "web", 101).Completed {
		t.Fatalf("fresh task should not be completed")
	}
	if err := m.RecordTask(ctx, "web", 101, 5*time.Hour); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}

	clock.Advance(time.Minute)
	if !m.TaskStatus(ctx, "web", 101).Completed {
		t.Fatalf("task should be completed 1 minute after recording")
	}

	clock.Advance(4*time.Hour + 58*time.Minute) // T0+4h59m
	if !m.TaskStatus(ctx, "web", 101).Completed {
		t.Fatalf("task should still be completed at 4h59m")
	}

	clock.Advance(time.Minute + time.Second) // past T0+5h
	if m.TaskStatus(ctx, "web", 101).Completed {
		t.Fatalf("task should be available after the cooldown elapses")
	}
}

func TestExpiryBoundaryInclusive(t *testing.T) {
	m, clock, _ := newTestMachine()
	ctx := context.Background()

	if err := m.RecordTask(ctx, "web", 201, 10*time.Minute); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	// exactly at cooldownEnd the task must already read as available
	clock.Advance(10 * time.Minute)
	if m.TaskStatus(ctx, "web", 201).Completed {
		t.Fatalf("task must be available at the exact cooldown boundary")
	}
}

func TestReadIsPure(t *testing.T) {
	m, clock, store := newTestMachine()
	ctx := context.Background()

	if err := m.RecordTask(ctx, "web", 301, time.Hour); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	key := StateKey("web", KindTask, 301)
	before, _ := store.GetItem(ctx, key)

	clock.Advance(2 * time.Hour)
	for i := 0; i < 5; i++ {
		m.TaskStatus(ctx, "web", 301)
		m.CategoryStatus(ctx, "web", 3, []int{301})
	}
	after, _ := store.GetItem(ctx, key)
	if before != after {
		t.Fatalf("status reads must not rewrite stored state: %q -> %q", before, after)
	}
}

func TestCategoryDerivationFreshness(t *testing.T) {
	m, clock, _ := newTestMachine()
	ctx := context.Background()
	tasks := []int{101, 102}

	if err := m.RecordTask(ctx, "web", 101, 5*time.Hour); err != nil {
		t.Fatalf("RecordTask A: %v", err)
	}
	if st := m.CategoryStatus(ctx, "web", 1, tasks); st.Complete {
		t.Fatalf("category must not be complete with one task pending")
	}

	if err := m.RecordTask(ctx, "web", 102, 5*time.Hour); err != nil {
		t.Fatalf("RecordTask B: %v", err)
	}
	if st := m.CategoryStatus(ctx, "web", 1, tasks); !st.Complete {
		t.Fatalf("category must be complete once every task is complete")
	}

	// a single task cooldown expiring flips the derived state immediately,
	// regardless of what the stored category record says
	recorded, err := m.RecordCategory(ctx, "web", 1, tasks, 5*time.Hour)
	if err != nil || !recorded {
		t.Fatalf("RecordCategory: recorded=%v err=%v", recorded, err)
	}
	clock.Advance(5*time.Hour + time.Second)
	st := m.CategoryStatus(ctx, "web", 1, tasks)
	if st.Complete {
		t.Fatalf("derived category state must follow expired task cooldowns")
	}
}

func TestCategoryCooldownIndependentOfTasks(t *testing.T) {
	m, clock, store := newTestMachine()
	ctx := context.Background()
	tasks := []int{101, 102}

	if err := m.RecordTask(ctx, "web", 101, time.Hour); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	if err := m.RecordTask(ctx, "web", 102, 2*time.Hour); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	recorded, err := m.RecordCategory(ctx, "web", 1, tasks, 5*time.Hour)
	if err != nil || !recorded {
		t.Fatalf("RecordCategory: recorded=%v err=%v", recorded, err)
	}

	catRaw, _ := store.GetItem(ctx, StateKey("web", KindCategory, 1))
	taskRaw, _ := store.GetItem(ctx, StateKey("web", KindTask, 101))
	if catRaw == taskRaw {
		t.Fatalf("category cooldown timestamp must be distinct from task cooldowns")
	}

	// both task cooldowns lapse but the category clock keeps it locked
	clock.Advance(3 * time.Hour)
	st := m.CategoryStatus(ctx, "web", 1, tasks)
	if st.Complete {
		t.Fatalf("category complete flag must re-derive from expired tasks")
	}
	if !st.OnCooldown {
		t.Fatalf("category cooldown must still be running on its own clock")
	}
	if st.CooldownRemaining != 120 {
		t.Fatalf("expected 120 minutes remaining, got %d", st.CooldownRemaining)
	}
}

func TestRecordCategoryNeverPartial(t *testing.T) {
	m, _, store := newTestMachine()
	ctx := context.Background()

	if err := m.RecordTask(ctx, "web", 101, time.Hour); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	recorded, err := m.RecordCategory(ctx, "web", 1, []int{101, 102}, time.Hour)
	if err != nil {
		t.Fatalf("RecordCategory: %v", err)
	}
	if recorded {
		t.Fatalf("category must not record while a member task is incomplete")
	}
	if raw, _ := store.GetItem(ctx, StateKey("web", KindCategory, 1)); raw != "" {
		t.Fatalf("no category record should be written, got %q", raw)
	}
}

func TestMalformedStateFailsOpen(t *testing.T) {
	m, _, store := newTestMachine()
	ctx := context.Background()

	_ = store.SetItem(ctx, StateKey("web", KindTask, 401), "{not json")
	if m.TaskStatus(ctx, "web", 401).Completed {
		t.Fatalf("malformed state must read as available")
	}
	_ = store.SetItem(ctx, StateKey("web", KindCategory, 4), "[]")
	st := m.CategoryStatus(ctx, "web", 4, []int{401})
	if st.OnCooldown {
		t.Fatalf("malformed category state must read as not on cooldown")
	}
}

func TestDeviceScoping(t *testing.T) {
	m, _, _ := newTestMachine()
	ctx := context.Background()

	if err := m.RecordTask(ctx, "device-a", 101, time.Hour); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	if !m.TaskStatus(ctx, "device-a", 101).Completed {
		t.Fatalf("completion should be visible on the recording device")
	}
	if m.TaskStatus(ctx, "device-b", 101).Completed {
		t.Fatalf("completion must not leak across devices")
	}
}

func TestTickRewritesExpiredRecord(t *testing.T) {
	m, clock, store := newTestMachine()
	ctx := context.Background()

	if err := m.RecordTask(ctx, "web", 404, time.Minute); err != nil {
		t.Fatalf("RecordTask: %v", err)
	}
	key := StateKey("web", KindTask, 404)

	// not yet expired -> no rewrite
	if err := m.Tick(ctx, "web", KindTask, 404); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	raw, _ := store.GetItem(ctx, key)
	if raw == `{"completed":false,"cooldown_end":0}` {
		t.Fatalf("Tick must not clear a live record")
	}

	clock.Advance(2 * time.Minute)
	if err := m.Tick(ctx, "web", KindTask, 404); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	raw, _ = store.GetItem(ctx, key)
	if raw != `{"completed":false,"cooldown_end":0}` {
		t.Fatalf("Tick should reset an expired record, got %q", raw)
	}
}

func TestSurveyStateIndependentOfTask(t *testing.T) {
	m, clock, _ := newTestMachine()
	ctx := context.Background()

	if err := m.Record(ctx, "web", KindSurvey, 101, 10*time.Minute); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !m.Status(ctx, "web", KindSurvey, 101).Completed {
		t.Fatalf("survey state should be locked after recording")
	}
	if m.TaskStatus(ctx, "web", 101).Completed {
		t.Fatalf("task state must not be affected by the survey lock")
	}

	clock.Advance(10*time.Minute + time.Second)
	if m.Status(ctx, "web", KindSurvey, 101).Completed {
		t.Fatalf("survey lock should expire after its cooldown")
	}
}
