// Package checkout implements the mock payment flow: form validation, the
// submission state machine, and order persistence. No real payment is ever
// processed; the card fields only get format checks.
package checkout

import (
	"regexp"
	"strings"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvcPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidationError is a rejected payment form with its user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PaymentDetails are the raw payment form fields as entered.
type PaymentDetails struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	CardNumber  string `json:"cardNumber"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CVC         string `json:"cvc"`
}

// Validate runs the format checks. The card number is normalized by stripping
// whitespace before the 16-digit check. The first failing check wins and
// returns a *ValidationError with its specific message.
func (p PaymentDetails) Validate() error {
	if !cardNumberPattern.MatchString(stripSpaces(p.CardNumber)) {
		return &ValidationError{Message: "Card number must be 16 digits."}
	}
	if !cvcPattern.MatchString(p.CVC) {
		return &ValidationError{Message: "CVC must be 3 or 4 digits."}
	}
	if p.ExpiryMonth == "" || p.ExpiryYear == "" {
		return &ValidationError{Message: "Please select month and year."}
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Surname) == "" {
		return &ValidationError{Message: "Please enter your name and surname."}
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
