package finance

import (
	"fmt"

	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/jneralrex/stratos-backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommissionRates holds the share of a confirmed transaction paid to each
// beneficiary type
type CommissionRates struct {
	Affiliate valueobject.Rate
	SalesRep  valueobject.Rate
}

// DefaultCommissionRates returns 10% for the referring affiliate and 5% for
// the confirming sales rep
func DefaultCommissionRates() CommissionRates {
	return CommissionRates{
		Affiliate: valueobject.MustRate("0.10"),
		SalesRep:  valueobject.MustRate("0.05"),
	}
}

// NewCommissionRates builds rates from configured fractions
func NewCommissionRates(affiliate, salesRep decimal.Decimal) (CommissionRates, error) {
	aff, err := valueobject.NewRate(affiliate)
	if err != nil {
		return CommissionRates{}, fmt.Errorf("affiliate rate: %w", err)
	}
	rep, err := valueobject.NewRate(salesRep)
	if err != nil {
		return CommissionRates{}, fmt.Errorf("sales rep rate: %w", err)
	}
	return CommissionRates{Affiliate: aff, SalesRep: rep}, nil
}

// CalculateCommissions returns the ledger entries owed for a confirmed
// transaction: one referral entry when the student has a referrer, and one
// sale entry for the confirming sales rep. Amounts are rounded half-up to the
// minor unit. Entries are created in approved status.
func CalculateCommissions(tx *Transaction, referrer *identity.User, rates CommissionRates) ([]*Commission, error) {
	if tx.Status != TransactionStatusConfirmed || tx.ConfirmedBy == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Commissions are only due on confirmed transactions")
	}

	amount := tx.GetAmountMoney()
	commissions := make([]*Commission, 0, 2)

	if referrer != nil {
		referral, err := NewCommission(
			referrer.ID, tx.ID, tx.StudentID,
			rates.Affiliate.Apply(amount).Amount(),
			CommissionTypeReferral, CommissionStatusApproved,
		)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, referral)
	}

	sale, err := NewCommission(
		*tx.ConfirmedBy, tx.ID, tx.StudentID,
		rates.SalesRep.Apply(amount).Amount(),
		CommissionTypeSale, CommissionStatusApproved,
	)
	if err != nil {
		return nil, err
	}
	commissions = append(commissions, sale)

	return commissions, nil
}

// SummarizeCommissions rebuilds a beneficiary's cached totals from their
// ledger entries. totalEarned counts approved and paid rows.
func SummarizeCommissions(commissions []*Commission) identity.CommissionsSummary {
	summary := identity.ZeroCommissionsSummary()
	for _, c := range commissions {
		switch c.Status {
		case CommissionStatusPending:
			summary.Pending = summary.Pending.Add(c.Amount)
		case CommissionStatusApproved:
			summary.TotalEarned = summary.TotalEarned.Add(c.Amount)
		case CommissionStatusPaid:
			summary.TotalEarned = summary.TotalEarned.Add(c.Amount)
			summary.PaidOut = summary.PaidOut.Add(c.Amount)
		}
	}
	return summary
}

// Earnings is the read-side view of a beneficiary's commission ledger
type Earnings struct {
	TotalEarnings    decimal.Decimal
	ApprovedEarnings decimal.Decimal
	PendingEarnings  decimal.Decimal
	PaidEarnings     decimal.Decimal
	Commissions      []*Commission
}

// ComputeEarnings aggregates ledger rows. TotalEarnings is the sum of every
// row regardless of status.
func ComputeEarnings(commissions []*Commission) Earnings {
	e := Earnings{
		TotalEarnings:    decimal.Zero,
		ApprovedEarnings: decimal.Zero,
		PendingEarnings:  decimal.Zero,
		PaidEarnings:     decimal.Zero,
		Commissions:      commissions,
	}
	for _, c := range commissions {
		e.TotalEarnings = e.TotalEarnings.Add(c.Amount)
		switch c.Status {
		case CommissionStatusApproved:
			e.ApprovedEarnings = e.ApprovedEarnings.Add(c.Amount)
		case CommissionStatusPending:
			e.PendingEarnings = e.PendingEarnings.Add(c.Amount)
		case CommissionStatusPaid:
			e.PaidEarnings = e.PaidEarnings.Add(c.Amount)
		}
	}
	if e.Commissions == nil {
		e.Commissions = []*Commission{}
	}
	return e
}
