package utils

import "testing"

const sampleMessage = "QK12AB34CD Confirmed. You have sent KSh 250 to PaidTasks Ltd. Your M-Pesa balance is KSh 1,200."

func TestVerifyMpesaMessage(t *testing.T) {
	code, err := VerifyMpesaMessage(sampleMessage, 250, "PaidTasks Ltd")
	if err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
	if code != "QK12AB34CD" {
		t.Fatalf("expected receipt code QK12AB34CD, got %q", code)
	}
}

func TestVerifyMpesaMessageTillNameCaseInsensitive(t *testing.T) {
	if _, err := VerifyMpesaMessage(sampleMessage, 250, "paidtasks ltd"); err != nil {
		t.Fatalf("till name matching must ignore case: %v", err)
	}
}

func TestVerifyMpesaMessageFailures(t *testing.T) {
	if _, err := VerifyMpesaMessage(sampleMessage, 500, "PaidTasks Ltd"); err != ErrMpesaAmountMissing {
		t.Fatalf("expected amount error, got %v", err)
	}
	if _, err := VerifyMpesaMessage(sampleMessage, 250, "Other Till"); err != ErrMpesaTillMissing {
		t.Fatalf("expected till error, got %v", err)
	}
	if _, err := VerifyMpesaMessage("Confirmed. You have sent KSh 250 to PaidTasks Ltd.", 250, "PaidTasks Ltd"); err != ErrMpesaReceiptMissing {
		t.Fatalf("expected receipt error, got %v", err)
	}
}
