package invoice

import (
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

// AmountDueAsOf is what the invoice is worth on the calendar date asOf.
//
// Before the due date the early discount applies; an active grant replaces
// the plan discount rather than adding to it. On the due date the base is
// owed. After it the late fee is added once and daily interest accrues as
// simple interest on the fee-inclusive amount, rounded once.
//
// The result depends only on the stored snapshot, never on the invoice's
// status.
func AmountDueAsOf(inv *Invoice, grant *discount.Grant, asOf time.Time) (money.Money, error) {
	if err := validateTerms(inv.Terms, grant); err != nil {
		return money.Money{}, err
	}

	base := inv.BaseAmount
	today := period.Date(asOf, nil)
	days := period.DaysBetween(inv.DueDate, today)

	switch {
	case days < 0:
		pct := inv.Terms.EarlyDiscountPercent
		if grant != nil && grant.Covers(inv.Period) {
			pct = grant.Percent
		}

		discounted, err := base.SubtractNonNegative(base.PercentageOf(pct))
		if err != nil {
			return money.Money{}, fmt.Errorf("%w: discount %s%% exceeds the base", plan.ErrInvalidPlanParameters, pct)
		}

		return discounted, nil

	case days == 0:
		return base, nil

	default:
		withFee := base.Add(base.PercentageOf(inv.Terms.LateFeePercent))
		interest := withFee.PercentageOf(inv.Terms.DailyInterestPercent.Mul(int64(days)))

		return withFee.Add(interest), nil
	}
}

func validateTerms(t Terms, grant *discount.Grant) error {
	switch {
	case t.LateFeePercent.IsNegative():
		return fmt.Errorf("%w: negative late fee %s", plan.ErrInvalidPlanParameters, t.LateFeePercent)
	case t.DailyInterestPercent.IsNegative():
		return fmt.Errorf("%w: negative daily interest %s", plan.ErrInvalidPlanParameters, t.DailyInterestPercent)
	case t.EarlyDiscountPercent.IsNegative():
		return fmt.Errorf("%w: negative early discount %s", plan.ErrInvalidPlanParameters, t.EarlyDiscountPercent)
	case grant != nil && grant.Percent.IsNegative():
		return fmt.Errorf("%w: negative granted discount %s", plan.ErrInvalidPlanParameters, grant.Percent)
	}

	return nil
}
