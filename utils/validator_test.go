package utils

import "testing"

func TestValidateMpesaNumber(t *testing.T) {
	valid := []string{"0712345678", "0112345678", "254712345678", "254112345678"}
	for _, n := range valid {
		if err := ValidateMpesaNumber(n); err != nil {
			t.Fatalf("expected %q to be valid, got %v", n, err)
		}
	}

	invalid := []string{"", "0812345678", "071234567", "07123456789", "25512345678", "+254712345678", "07 12345678"}
	for _, n := range invalid {
		if err := ValidateMpesaNumber(n); err == nil {
			t.Fatalf("expected %q to be rejected", n)
		}
	}
}

func TestValidateStructRegister(t *testing.T) {
	type req struct {
		Name                 string `validate:"required,nameok"`
		Email                string `validate:"required,email"`
		Password             string `validate:"required,pwdmin"`
		PasswordConfirmation string `validate:"required,eqfield=Password"`
	}

	ok := req{Name: "Jane Doe", Email: "jane@example.com", Password: "secret1", PasswordConfirmation: "secret1"}
	if err := ValidateStruct(&ok); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	cases := []req{
		{Name: "", Email: "jane@example.com", Password: "secret1", PasswordConfirmation: "secret1"},
		{Name: "Jane", Email: "not-an-email", Password: "secret1", PasswordConfirmation: "secret1"},
		{Name: "Jane", Email: "jane@example.com", Password: "short", PasswordConfirmation: "short"},
		{Name: "Jane", Email: "jane@example.com", Password: "secret1", PasswordConfirmation: "secret2"},
	}
	for i, c := range cases {
		if err := ValidateStruct(&c); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
