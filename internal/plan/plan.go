package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

var (
	ErrNoPlanForScope        = errors.New("no tuition plan for scope")
	ErrInvalidPlanParameters = errors.New("invalid plan parameters")
	ErrPlanLocked            = errors.New("plan already invoiced for period")
	ErrInvalidScope          = errors.New("invalid plan scope")
)

// Scope says whether a plan applies to a whole class or to one student.
type Scope string

const (
	ScopeClass   Scope = "class"
	ScopeStudent Scope = "student"
)

func (s Scope) Valid() bool {
	return s == ScopeClass || s == ScopeStudent
}

// Terms are the billing parameters copied onto every invoice generated from
// a plan version.
type Terms struct {
	BaseAmount           money.Money
	DueDay               int
	LateFeePercent       money.Percent
	DailyInterestPercent money.Percent
	EarlyDiscountPercent money.Percent
}

// Validate rejects parameters the accrual rules cannot apply.
func (t Terms) Validate() error {
	switch {
	case t.BaseAmount.Cents <= 0:
		return fmt.Errorf("%w: base amount must be positive", ErrInvalidPlanParameters)
	case t.DueDay < 1 || t.DueDay > 31:
		return fmt.Errorf("%w: due day %d outside 1-31", ErrInvalidPlanParameters, t.DueDay)
	case t.LateFeePercent.IsNegative():
		return fmt.Errorf("%w: negative late fee", ErrInvalidPlanParameters)
	case t.DailyInterestPercent.IsNegative():
		return fmt.Errorf("%w: negative daily interest", ErrInvalidPlanParameters)
	case t.EarlyDiscountPercent.IsNegative():
		return fmt.Errorf("%w: negative early discount", ErrInvalidPlanParameters)
	case t.EarlyDiscountPercent.Compare(money.MustPercent("100")) > 0:
		return fmt.Errorf("%w: early discount above 100%%", ErrInvalidPlanParameters)
	}

	return nil
}

// Plan is one immutable version of a scope's billing parameters, effective
// from its period until a later version takes over.
type Plan struct {
	ID            uuid.UUID
	Scope         Scope
	ScopeID       string
	Version       int
	EffectiveFrom period.Period
	Terms         Terms
	CreatedAt     time.Time
}
