package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

type planResponse struct {
	ID                   uuid.UUID     `json:"id"`
	Scope                plan.Scope    `json:"scope"`
	ScopeID              string        `json:"scope_id"`
	Version              int           `json:"version"`
	EffectiveFrom        period.Period `json:"effective_from"`
	BaseAmount           money.Money   `json:"base_amount"`
	DueDay               int           `json:"due_day"`
	LateFeePercent       money.Percent `json:"late_fee_percent"`
	DailyInterestPercent money.Percent `json:"daily_interest_percent"`
	EarlyDiscountPercent money.Percent `json:"early_discount_percent"`
	CreatedAt            time.Time     `json:"created_at"`
}

func toResponse(p *plan.Plan) planResponse {
	return planResponse{
		ID:                   p.ID,
		Scope:                p.Scope,
		ScopeID:              p.ScopeID,
		Version:              p.Version,
		EffectiveFrom:        p.EffectiveFrom,
		BaseAmount:           p.Terms.BaseAmount,
		DueDay:               p.Terms.DueDay,
		LateFeePercent:       p.Terms.LateFeePercent,
		DailyInterestPercent: p.Terms.DailyInterestPercent,
		EarlyDiscountPercent: p.Terms.EarlyDiscountPercent,
		CreatedAt:            p.CreatedAt,
	}
}

func toResponseList(plans []*plan.Plan) []planResponse {
	resp := make([]planResponse, len(plans))
	for i, p := range plans {
		resp[i] = toResponse(p)
	}

	return resp
}
