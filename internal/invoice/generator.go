package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
)

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=invoice
type RosterSource interface {
	Active(ctx context.Context) ([]roster.Entry, error)
}

type PlanResolver interface {
	Resolve(ctx context.Context, studentID, classID string, p period.Period) (*plan.Plan, error)
}

type Generator struct {
	repo   Repository
	roster RosterSource
	plans  PlanResolver
	codec  *boleto.Codec
	issuer Issuer
	now    func() time.Time
}

func NewGenerator(repo Repository, rs RosterSource, plans PlanResolver, codec *boleto.Codec, issuer Issuer) *Generator {
	return &Generator{
		repo:   repo,
		roster: rs,
		plans:  plans,
		codec:  codec,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the generator's clock.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

type Failure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

type GenerationResult struct {
	Period  period.Period
	Created []*Invoice
	Skipped []string
	Failed  []Failure
}

// GenerateForPeriod bills every active student once for the period. Re-runs
// and concurrent runs skip students that already have an invoice. A failure
// for one student is reported and does not stop the batch.
func (g *Generator) GenerateForPeriod(ctx context.Context, p period.Period) (*GenerationResult, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("%w: period is required", period.ErrInvalidPeriod)
	}

	entries, err := g.roster.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}

	result := &GenerationResult{
		Period:  p,
		Created: []*Invoice{},
		Skipped: []string{},
		Failed:  []Failure{},
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		inv, err := g.generateOne(ctx, e, p)

		switch {
		case err != nil:
			slog.Warn("invoice generation failed", "student_id", e.StudentID, "period", p.String(), "error", err)
			result.Failed = append(result.Failed, Failure{StudentID: e.StudentID, Reason: err.Error(), Err: err})
		case inv == nil:
			result.Skipped = append(result.Skipped, e.StudentID)
		default:
			result.Created = append(result.Created, inv)
		}
	}

	slog.Info("invoice generation finished",
		"period", p.String(),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed))

	return result, nil
}

// generateOne returns nil without error when the student is already billed.
func (g *Generator) generateOne(ctx context.Context, e roster.Entry, p period.Period) (*Invoice, error) {
	exists, err := g.repo.ExistsForPeriod(ctx, e.StudentID, p)
	if err != nil {
		return nil, fmt.Errorf("checking existing invoice: %w", err)
	}

	if exists {
		return nil, nil
	}

	pl, err := g.plans.Resolve(ctx, e.StudentID, e.ClassID, p)
	if err != nil {
		return nil, err
	}

	now := g.now().UTC()
	inv := &Invoice{
		ID:          uuid.New(),
		StudentID:   e.StudentID,
		ClassID:     e.ClassID,
		PlanID:      pl.ID,
		PlanVersion: pl.Version,
		Period:      p,
		BaseAmount:  pl.Terms.BaseAmount,
		Terms:       TermsFromPlan(pl.Terms),
		DueDate:     p.DueDate(pl.Terms.DueDay),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	itx, err := g.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin generation: %w", err)
	}
	defer itx.Rollback()

	seq, err := itx.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating boleto sequence: %w", err)
	}

	b, err := g.codec.Encode(g.issuer.AgreementCode, g.issuer.BankCode, inv.DueDate, inv.BaseAmount, seq)
	if err != nil {
		return nil, fmt.Errorf("encoding boleto: %w", err)
	}

	inv.SequenceNumber = seq
	inv.Boleto = b

	inserted, err := itx.InsertInvoice(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("inserting invoice: %w", err)
	}

	if !inserted {
		// Another run won the race; the sequence goes back with the rollback.
		return nil, nil
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit generation: %w", err)
	}

	return inv, nil
}
