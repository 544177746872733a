package sale

import (
	"fishledger/internal/core/apperror"
	"fishledger/internal/core/types"
)

// Totals are the computed amounts of a sale at full precision.
type Totals struct {
	Subtotal types.Money
	Total    types.Money
}

// Rounded returns the totals rounded to currency precision for presentation.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: types.RoundCurrency(t.Subtotal),
		Total:    types.RoundCurrency(t.Total),
	}
}

// ComputeTotals computes subtotal = quantity * price * (1 - discount/100)
// and total = subtotal + deliveryFee without rounding.
func ComputeTotals(quantityKg types.Kilograms, pricePerKg, discountPercentage, deliveryFee types.Money) (Totals, error) {
	if !quantityKg.IsPositive() {
		return Totals{}, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantityKg")
	}
	if pricePerKg.IsNegative() {
		return Totals{}, apperror.NewValidation("price cannot be negative").
			WithDetail("field", "pricePerKg")
	}
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(types.Hundred()) {
		return Totals{}, apperror.NewValidation("discount must be between 0 and 100").
			WithDetail("field", "discountPercentage")
	}
	if deliveryFee.IsNegative() {
		return Totals{}, apperror.NewValidation("delivery fee cannot be negative").
			WithDetail("field", "deliveryFee")
	}

	gross := quantityKg.Mul(pricePerKg)
	discount := gross.Mul(discountPercentage).Div(types.Hundred())
	subtotal := gross.Sub(discount)

	return Totals{
		Subtotal: subtotal,
		Total:    subtotal.Add(deliveryFee),
	}, nil
}

// Account is the payment position of one sale.
type Account struct {
	Total    types.Money
	Paid     types.Money
	IsCredit bool
}

// AccountOf builds the account of a sale from its loaded payments.
func AccountOf(s *Sale) Account {
	paid := types.Zero()
	for _, p := range s.Payments {
		paid = paid.Add(p.Amount)
	}
	return Account{Total: s.TotalAmount, Paid: paid, IsCredit: s.IsCredit}
}

// OutstandingBalance is what the customer still owes.
// Only credit sales carry a balance; it never goes below zero.
func (a Account) OutstandingBalance() types.Money {
	if !a.IsCredit {
		return types.Zero()
	}
	return types.NonNegative(a.Total.Sub(a.Paid))
}

// Accept checks that a payment of amount can be recorded.
// It fails with OVERPAYMENT when the paid sum would exceed the total.
func (a Account) Accept(amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	if a.Paid.Add(amount).GreaterThan(a.Total) {
		return apperror.NewOverpayment(a.Total, a.Paid, amount)
	}
	return nil
}
