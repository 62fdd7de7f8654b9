package users

import (
	"strings"
	"testing"
	"time"

	"github.com/MeAsCoder/PaidTasks/catalog"
	"github.com/MeAsCoder/PaidTasks/models"
)

func testQuestions() []catalog.QuestionSpec {
	return []catalog.QuestionSpec{
		{ID: 1, Prompt: "Pick one", Kind: catalog.QuestionSingleChoice, Options: []string{"a", "b"}},
		{ID: 2, Prompt: "Anything else?", Kind: catalog.QuestionText, Optional: true},
	}
}

func TestStepGateDwellNotElapsed(t *testing.T) {
	session := &models.FlowSession{
		Step:          0,
		StepEnteredAt: time.Now(),
		Answers:       `{"1":"a"}`,
	}
	cfg := catalog.FlowConfig{Dwell: time.Minute}

	msg := stepGate(session, testQuestions(), cfg)
	if msg == "" {
		t.Fatal("expected dwell gate message, got none")
	}
	if !strings.Contains(msg, "wait") {
		t.Fatalf("unexpected gate message: %q", msg)
	}
}

func TestStepGateMissingMandatoryAnswer(t *testing.T) {
	session := &models.FlowSession{
		Step:          0,
		StepEnteredAt: time.Now().Add(-2 * time.Minute),
		Answers:       `{}`,
	}
	cfg := catalog.FlowConfig{Dwell: time.Minute}

	msg := stepGate(session, testQuestions(), cfg)
	if msg != "Answer the current question first" {
		t.Fatalf("unexpected gate message: %q", msg)
	}
}

func TestStepGateOptionalQuestionPasses(t *testing.T) {
	session := &models.FlowSession{
		Step:          1,
		StepEnteredAt: time.Now().Add(-2 * time.Minute),
		Answers:       `{"1":"a"}`,
	}
	cfg := catalog.FlowConfig{Dwell: time.Minute}

	if msg := stepGate(session, testQuestions(), cfg); msg != "" {
		t.Fatalf("optional question should pass the gate, got %q", msg)
	}
}

func TestStepGateInvalidAnswerRejected(t *testing.T) {
	session := &models.FlowSession{
		Step:          0,
		StepEnteredAt: time.Now().Add(-2 * time.Minute),
		Answers:       `{"1":"z"}`,
	}
	cfg := catalog.FlowConfig{Dwell: time.Minute}

	msg := stepGate(session, testQuestions(), cfg)
	if msg == "" {
		t.Fatal("expected validation message for out-of-set answer")
	}
}

func TestStepGatePassesAfterDwellWithAnswer(t *testing.T) {
	session := &models.FlowSession{
		Step:          0,
		StepEnteredAt: time.Now().Add(-2 * time.Minute),
		Answers:       `{"1":"b"}`,
	}
	cfg := catalog.FlowConfig{Dwell: time.Minute}

	if msg := stepGate(session, testQuestions(), cfg); msg != "" {
		t.Fatalf("expected gate to pass, got %q", msg)
	}
}

func TestStepGateZeroDwellMicrotask(t *testing.T) {
	session := &models.FlowSession{
		Step:          0,
		StepEnteredAt: time.Now(),
		Answers:       `{"1":"a"}`,
	}
	cfg := catalog.FlowConfig{Dwell: 0}

	if msg := stepGate(session, testQuestions(), cfg); msg != "" {
		t.Fatalf("zero dwell should not gate, got %q", msg)
	}
}
