package validator

import (
	"errors"
	"strings"
	"testing"
)

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	Code     string `validate:"omitempty,otpcode"`
}

func newTestValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}
	return v
}

func TestValidatePasses(t *testing.T) {
	v := newTestValidator(t)

	if err := v.Validate(credentials{
		Email:    "ann@example.com",
		Password: "hunter2hunter2",
		Code:     "012345",
	}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidatePasswordRule(t *testing.T) {
	v := newTestValidator(t)

	cases := map[string]bool{
		"short":                    false,
		"eightchr":                 true,
		strings.Repeat("a", 72):    true,
		strings.Repeat("a", 73):    false,
		"with spaces is fine too!": true,
	}

	for password, want := range cases {
		err := v.Validate(credentials{Email: "ann@example.com", Password: password})
		if got := err == nil; got != want {
			t.Fatalf("password %q: expected valid=%v, got %v", password, want, err)
		}
	}
}

func TestValidateOTPCodeRule(t *testing.T) {
	v := newTestValidator(t)

	cases := map[string]bool{
		"123456":  true,
		"012345":  true,
		"12345":   false,
		"1234567": false,
		"12345a":  false,
		" 12345":  false,
	}

	for code, want := range cases {
		err := v.Validate(credentials{Email: "ann@example.com", Password: "hunter2hunter2", Code: code})
		if got := err == nil; got != want {
			t.Fatalf("code %q: expected valid=%v, got %v", code, want, err)
		}
	}
}

func TestValidateReturnsTranslatedFieldMap(t *testing.T) {
	v := newTestValidator(t)

	err := v.Validate(credentials{Email: "not-an-email", Password: "short", Code: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected V10ValidationError, got %T", err)
	}

	values := verr.Values()
	if values["password"] != "Password must be 8-72 characters" {
		t.Fatalf("unexpected password message: %q", values["password"])
	}
	if values["code"] != "Code must be a 6-digit code" {
		t.Fatalf("unexpected code message: %q", values["code"])
	}
	if _, ok := values["email"]; !ok {
		t.Fatal("expected an email field error")
	}
}
