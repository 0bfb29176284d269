package basket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseVoucher(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{name: "valid single digit", code: "discount5", want: 5},
		{name: "valid two digits", code: "discount25", want: 25},
		{name: "upper bound", code: "discount99", want: 99},
		{name: "case insensitive", code: "DiScOuNt10", want: 10},
		{name: "zero clears", code: "discount0", want: 0},
		{name: "zero padded clears", code: "discount00", want: 0},
		{name: "three digits rejected", code: "discount100", want: 0},
		{name: "missing digits", code: "discount", want: 0},
		{name: "wrong prefix", code: "voucher10", want: 0},
		{name: "trailing garbage", code: "discount10x", want: 0},
		{name: "leading whitespace", code: " discount10", want: 0},
		{name: "empty", code: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVoucher(tt.code))
		})
	}
}

func TestTotal(t *testing.T) {
	items := []LineItem{
		{ID: "A", UnitPrice: "10.00", Quantity: 2},
		{ID: "B", UnitPrice: "5.00", Quantity: 1},
	}

	total := Total(items)
	assert.True(t, total.Equal(decimal.RequireFromString("25.00")), "got %s", total)
}

func TestTotal_UnparseablePrice(t *testing.T) {
	items := []LineItem{
		{ID: "A", UnitPrice: "10.00", Quantity: 1},
		{ID: "B", UnitPrice: "N/A", Quantity: 3},
	}

	total := Total(items)
	assert.True(t, total.Equal(decimal.RequireFromString("10.00")), "got %s", total)
}

func TestDiscountedTotal(t *testing.T) {
	total := decimal.RequireFromString("25.00")

	t.Run("zero percent is identity", func(t *testing.T) {
		assert.True(t, DiscountedTotal(total, 0).Equal(total))
	})

	t.Run("negative percent is identity", func(t *testing.T) {
		assert.True(t, DiscountedTotal(total, -5).Equal(total))
	})

	t.Run("ten percent", func(t *testing.T) {
		got := DiscountedTotal(total, 10)
		assert.True(t, got.Equal(decimal.RequireFromString("22.50")), "got %s", got)
	})

	t.Run("ninety nine percent", func(t *testing.T) {
		got := DiscountedTotal(decimal.NewFromInt(100), 99)
		assert.True(t, got.Equal(decimal.NewFromInt(1)), "got %s", got)
	})
}

func TestItemCount(t *testing.T) {
	b := Basket{Items: []LineItem{
		{ID: "A", Quantity: 2},
		{ID: "B", Quantity: 3},
	}}
	assert.Equal(t, 5, b.ItemCount())
	assert.False(t, b.Empty())
	assert.True(t, Basket{}.Empty())
}
