package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayment() PaymentDetails {
	return PaymentDetails{
		Name:        "Ada",
		Surname:     "Lovelace",
		CardNumber:  "4111 1111 1111 1111",
		ExpiryMonth: "09",
		ExpiryYear:  "28",
		CVC:         "123",
	}
}

func TestPaymentDetails_Validate(t *testing.T) {
	t.Run("valid form passes", func(t *testing.T) {
		require.NoError(t, validPayment().Validate())
	})

	t.Run("spaced card number normalizes to 16 digits", func(t *testing.T) {
		p := validPayment()
		p.CardNumber = "4111 1111 1111 1111"
		require.NoError(t, p.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*PaymentDetails)
		message string
	}{
		{
			name:    "short card number",
			mutate:  func(p *PaymentDetails) { p.CardNumber = "411111111111" },
			message: "Card number must be 16 digits.",
		},
		{
			name:    "card number with letters",
			mutate:  func(p *PaymentDetails) { p.CardNumber = "4111x1111y1111z1" },
			message: "Card number must be 16 digits.",
		},
		{
			name:    "cvc too short",
			mutate:  func(p *PaymentDetails) { p.CVC = "12" },
			message: "CVC must be 3 or 4 digits.",
		},
		{
			name:    "cvc too long",
			mutate:  func(p *PaymentDetails) { p.CVC = "12345" },
			message: "CVC must be 3 or 4 digits.",
		},
		{
			name:    "month not selected",
			mutate:  func(p *PaymentDetails) { p.ExpiryMonth = "" },
			message: "Please select month and year.",
		},
		{
			name:    "year not selected",
			mutate:  func(p *PaymentDetails) { p.ExpiryYear = "" },
			message: "Please select month and year.",
		},
		{
			name:    "blank name",
			mutate:  func(p *PaymentDetails) { p.Name = "   " },
			message: "Please enter your name and surname.",
		},
		{
			name:    "blank surname",
			mutate:  func(p *PaymentDetails) { p.Surname = "" },
			message: "Please enter your name and surname.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayment()
			tt.mutate(&p)

			err := p.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.message, vErr.Message)
		})
	}
}
