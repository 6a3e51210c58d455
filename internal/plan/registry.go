package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

//go:generate mockgen -source=registry.go -destination=repository_mock.go -package=plan
type Repository interface {
	// CreatePlan assigns the next version number for the scope and persists.
	// It fails with ErrPlanLocked when the scope is invoiced at or after
	// EffectiveFrom, checked atomically with the insert.
	CreatePlan(ctx context.Context, p *Plan) error
	// FindEffective returns the version in force for the period, or ErrNoPlanForScope.
	FindEffective(ctx context.Context, scope Scope, scopeID string, p period.Period) (*Plan, error)
	ListVersions(ctx context.Context, scope Scope, scopeID string) ([]*Plan, error)
	// LatestInvoicedPeriod is the most recent period invoiced against any
	// version of the scope; ok is false when nothing was invoiced yet.
	LatestInvoicedPeriod(ctx context.Context, scope Scope, scopeID string) (p period.Period, ok bool, err error)
}

type Registry struct {
	repo Repository
	now  func() time.Time
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo, now: time.Now}
}

// WithClock replaces the registry's clock.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

type UpsertParams struct {
	Scope         Scope
	ScopeID       string
	EffectiveFrom period.Period
	Terms         Terms
}

// Upsert records a new version of the scope's plan. Periods that already have
// invoices keep the version they were billed with, so a change may only take
// effect after the latest invoiced period.
func (r *Registry) Upsert(ctx context.Context, params UpsertParams) (*Plan, error) {
	if !params.Scope.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, params.Scope)
	}

	if params.ScopeID == "" {
		return nil, fmt.Errorf("%w: scope id is required", ErrInvalidScope)
	}

	if params.EffectiveFrom.IsZero() {
		return nil, fmt.Errorf("%w: effective period is required", ErrInvalidPlanParameters)
	}

	if err := params.Terms.Validate(); err != nil {
		return nil, err
	}

	invoiced, ok, err := r.repo.LatestInvoicedPeriod(ctx, params.Scope, params.ScopeID)
	if err != nil {
		return nil, fmt.Errorf("checking invoiced periods: %w", err)
	}

	if ok && !params.EffectiveFrom.After(invoiced) {
		return nil, fmt.Errorf("%w: %s invoiced through %s, changes must start at %s or later",
			ErrPlanLocked, params.ScopeID, invoiced, invoiced.Next())
	}

	p := &Plan{
		ID:            uuid.New(),
		Scope:         params.Scope,
		ScopeID:       params.ScopeID,
		EffectiveFrom: params.EffectiveFrom,
		Terms:         params.Terms,
		CreatedAt:     r.now().UTC(),
	}

	if err := r.repo.CreatePlan(ctx, p); err != nil {
		return nil, fmt.Errorf("creating plan: %w", err)
	}

	return p, nil
}

// Get returns the plan snapshot effective for the period.
func (r *Registry) Get(ctx context.Context, scope Scope, scopeID string, p period.Period) (*Plan, error) {
	return r.repo.FindEffective(ctx, scope, scopeID, p)
}

// Resolve prefers a student-specific plan over the class plan.
func (r *Registry) Resolve(ctx context.Context, studentID, classID string, p period.Period) (*Plan, error) {
	found, err := r.repo.FindEffective(ctx, ScopeStudent, studentID, p)
	if err == nil {
		return found, nil
	}

	if !errors.Is(err, ErrNoPlanForScope) {
		return nil, err
	}

	found, err = r.repo.FindEffective(ctx, ScopeClass, classID, p)
	if err != nil {
		if errors.Is(err, ErrNoPlanForScope) {
			return nil, fmt.Errorf("%w: student %s, class %s, period %s", ErrNoPlanForScope, studentID, classID, p)
		}

		return nil, err
	}

	return found, nil
}

func (r *Registry) History(ctx context.Context, scope Scope, scopeID string) ([]*Plan, error) {
	return r.repo.ListVersions(ctx, scope, scopeID)
}
