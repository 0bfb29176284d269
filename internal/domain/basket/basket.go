// Package basket implements the customer's in-progress selection of line
// items, persisted per session in a durable store with an expiry policy and
// an optional percentage voucher discount.
package basket

import (
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one product entry in a basket or order, with a quantity.
// The unit price is kept as the decimal string it was listed with.
type LineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"price"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns unit price times quantity. A price that does not parse
// contributes zero.
func (it LineItem) Subtotal() decimal.Decimal {
	price, err := decimal.NewFromString(it.UnitPrice)
	if err != nil {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Basket is an ordered collection of line items, unique by item ID, together
// with the moment the persisted state stops being valid.
type Basket struct {
	Items  []LineItem
	Expiry time.Time
}

// Empty reports whether the basket holds no line items.
func (b Basket) Empty() bool {
	return len(b.Items) == 0
}

// ItemCount returns the sum of quantities across all line items.
func (b Basket) ItemCount() int {
	total := 0
	for _, it := range b.Items {
		total += it.Quantity
	}
	return total
}

// Total returns the sum of unit price times quantity over all line items.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// DiscountedTotal applies a percentage discount to a total. A percentage of
// zero or less leaves the total unchanged.
func DiscountedTotal(total decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return total
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(percent))).Div(hundred)
	return total.Mul(factor)
}

// voucherPattern: the literal prefix followed by one or two digits, matched
// case-insensitively against the whole code.
var voucherPattern = regexp.MustCompile(`(?i)^discount(\d{1,2})$`)

// ParseVoucher extracts the discount percentage from a voucher code.
// Only values in (0, 99] are accepted; any other input yields 0, which
// callers treat as "clear the active discount".
func ParseVoucher(code string) int {
	m := voucherPattern.FindStringSubmatch(code)
	if m == nil {
		return 0
	}
	percent, err := strconv.Atoi(m[1])
	if err != nil || percent <= 0 || percent > 99 {
		return 0
	}
	return percent
}
