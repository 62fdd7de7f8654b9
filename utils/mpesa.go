package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// M-Pesa confirmation messages start with an alphanumeric receipt code,
// e.g. "QK12AB34CD Confirmed. You have sent KSh 250 to ...".
var reMpesaReceipt = regexp.MustCompile(`^([A-Z0-9]{10})\b`)

var (
	ErrMpesaAmountMissing  = errors.New("confirmation message does not mention the activation amount")
	ErrMpesaTillMissing    = errors.New("confirmation message does not mention the till name")
	ErrMpesaReceiptMissing = errors.New("confirmation message does not start with an M-Pesa receipt code")
)

// VerifyMpesaMessage checks a pasted M-Pesa confirmation message against the
// expected activation amount and till name and returns the receipt code.
// These are plain-text substring checks with no cryptographic or carrier-side
// verification; the receipt code's uniqueness constraint in the database is
// what prevents a single message from activating more than one account.
func VerifyMpesaMessage(message string, amount float64, tillName string) (string, error) {
	message = strings.TrimSpace(message)

	amountStr := strconv.FormatFloat(amount, 'f', -1, 64)
	if !strings.Contains(message, amountStr) {
		return "", ErrMpesaAmountMissing
	}
	if tillName == "" || !strings.Contains(strings.ToLower(message), strings.ToLower(tillName)) {
		return "", ErrMpesaTillMissing
	}
	matches := reMpesaReceipt.FindStringSubmatch(strings.ToUpper(message))
	if matches == nil {
		return "", ErrMpesaReceiptMissing
	}
	return matches[1], nil
}
