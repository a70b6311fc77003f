package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to 2 fractional digits, half-up.
// Every computed subtotal goes through this before it is combined further,
// so stored amounts never carry hidden precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Mul2 multiplies two amounts and rounds the product.
func Mul2(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Mul(b))
}

// Div2 divides a by b and rounds the quotient. Division by zero returns zero;
// callers validate rates before reaching arithmetic.
func Div2(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return Round2(a.Div(b))
}
