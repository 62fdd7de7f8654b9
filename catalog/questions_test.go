package catalog

import "testing"

func TestCatalogIntegrity(t *testing.T) {
	cats := Categories()
	if len(cats) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(cats))
	}
	seen := map[int]bool{}
	for _, c := range cats {
		if len(c.Tasks) == 0 {
			t.Fatalf("category %d has no tasks", c.ID)
		}
		for _, task := range c.Tasks {
			if seen[task.ID] {
				t.Fatalf("duplicate task id %d", task.ID)
			}
			seen[task.ID] = true
			if task.Reward <= 0 {
				t.Fatalf("task %d has non-positive reward", task.ID)
			}
			if len(Questions(task.ID)) == 0 {
				t.Fatalf("task %d has no wizard steps", task.ID)
			}
		}
	}
}

func TestFindTaskReturnsCategory(t *testing.T) {
	task, cat, ok := FindTask(102)
	if !ok {
		t.Fatalf("task 102 should exist")
	}
	if task.Title != "Tech Usage Questionnaire" || cat.ID != 1 {
		t.Fatalf("unexpected lookup result: %q in category %d", task.Title, cat.ID)
	}
	if _, _, ok := FindTask(999); ok {
		t.Fatalf("task 999 should not exist")
	}
}

func TestValidateSingleChoice(t *testing.T) {
	q := QuestionSpec{ID: 1, Kind: QuestionSingleChoice, Options: []string{"Yes", "No"}}
	if err := q.ValidateAnswer("Yes"); err != nil {
		t.Fatalf("valid option rejected: %v", err)
	}
	if err := q.ValidateAnswer("Maybe"); err == nil {
		t.Fatalf("unknown option accepted")
	}
	if err := q.ValidateAnswer(nil); err == nil {
		t.Fatalf("missing answer accepted for required question")
	}
}

func TestValidateMultiChoice(t *testing.T) {
	q := QuestionSpec{ID: 2, Kind: QuestionMultiChoice, Options: []string{"A", "B", "C"}}
	if err := q.ValidateAnswer([]interface{}{"A", "C"}); err != nil {
		t.Fatalf("valid selections rejected: %v", err)
	}
	if err := q.ValidateAnswer([]interface{}{}); err == nil {
		t.Fatalf("empty selection accepted")
	}
	if err := q.ValidateAnswer([]interface{}{"A", "Z"}); err == nil {
		t.Fatalf("unknown selection accepted")
	}
	if err := q.ValidateAnswer("A"); err == nil {
		t.Fatalf("plain string accepted for multi choice")
	}
}

func TestValidateScale(t *testing.T) {
	q := QuestionSpec{ID: 3, Kind: QuestionScale, Min: 1, Max: 5}
	if err := q.ValidateAnswer("3"); err != nil {
		t.Fatalf("valid scale rejected: %v", err)
	}
	if err := q.ValidateAnswer(float64(5)); err != nil {
		t.Fatalf("numeric scale rejected: %v", err)
	}
	if err := q.ValidateAnswer("6"); err == nil {
		t.Fatalf("out-of-range scale accepted")
	}
	if err := q.ValidateAnswer("abc"); err == nil {
		t.Fatalf("non-numeric scale accepted")
	}
}

func TestValidateText(t *testing.T) {
	q := QuestionSpec{ID: 4, Kind: QuestionText}
	if err := q.ValidateAnswer("some feedback"); err != nil {
		t.Fatalf("text answer rejected: %v", err)
	}
	if err := q.ValidateAnswer("   "); err == nil {
		t.Fatalf("blank text accepted")
	}
	opt := QuestionSpec{ID: 5, Kind: QuestionText, Optional: true}
	if err := opt.ValidateAnswer(nil); err != nil {
		t.Fatalf("optional question must accept a missing answer: %v", err)
	}
}
