// Package discount records per-student discount grants that override the
// plan's early-payment discount.
package discount

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

var ErrInvalidGrant = errors.New("invalid discount grant")

// Grant replaces the plan's early discount for the student while any period
// in [From, To] is being billed. Grants do not stack: the latest one wins.
type Grant struct {
	ID        uuid.UUID     `json:"id"`
	StudentID string        `json:"student_id"`
	Percent   money.Percent `json:"percent"`
	Reason    string        `json:"reason"`
	GrantedBy string        `json:"granted_by"`
	From      period.Period `json:"from"`
	To        period.Period `json:"to"`
	CreatedAt time.Time     `json:"created_at"`
}

// Covers reports whether the grant applies to the period.
func (g *Grant) Covers(p period.Period) bool {
	return !p.Before(g.From) && !p.After(g.To)
}
