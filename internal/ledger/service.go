package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	// ListEntries returns the entries dated inside r ordered by (date, id).
	ListEntries(ctx context.Context, r period.DateRange) ([]*Entry, error)
	// Snapshot reads the opening balance (revenue minus expense before
	// r.From) and the entries inside r from one consistent view of the ledger.
	Snapshot(ctx context.Context, r period.DateRange) (opening money.Money, entries []*Entry, err error)
}

type Service struct {
	repo       Repository
	classifier Classifier
	now        func() time.Time
}

func NewService(repo Repository, operationalSubcategories []string) *Service {
	return &Service{
		repo:       repo,
		classifier: NewClassifier(operationalSubcategories),
		now:        time.Now,
	}
}

type ManualEntryParams struct {
	Date        time.Time
	Category    Category
	Subcategory string
	Amount      money.Money
	Description string
}

// Record appends an operator-submitted entry.
func (s *Service) Record(ctx context.Context, params ManualEntryParams) (*Entry, error) {
	subcategory := strings.TrimSpace(params.Subcategory)

	switch {
	case params.Date.IsZero():
		return nil, fmt.Errorf("%w: date is required", ErrInvalidEntry)
	case !params.Category.Valid():
		return nil, fmt.Errorf("%w: category %q", ErrInvalidEntry, params.Category)
	case subcategory == "":
		return nil, fmt.Errorf("%w: subcategory is required", ErrInvalidEntry)
	case params.Amount.Cents <= 0:
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}

	e := &Entry{
		ID:          uuid.New(),
		Date:        period.Date(params.Date, nil),
		Category:    params.Category,
		Subcategory: subcategory,
		Amount:      params.Amount,
		Source:      SourceManual,
		Description: params.Description,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("recording entry: %w", err)
	}

	return e, nil
}

func (s *Service) List(ctx context.Context, r period.DateRange) ([]*Entry, error) {
	entries, err := s.repo.ListEntries(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return entries, nil
}

func (s *Service) DRE(ctx context.Context, r period.DateRange) (*DRE, error) {
	entries, err := s.List(ctx, r)
	if err != nil {
		return nil, err
	}

	d := FoldDRE(r, entries, s.classifier)

	return &d, nil
}

func (s *Service) BalanceSummary(ctx context.Context, r period.DateRange) (*Balance, error) {
	opening, entries, err := s.snapshot(ctx, r)
	if err != nil {
		return nil, err
	}

	b := FoldBalance(r, opening, entries)

	return &b, nil
}

func (s *Service) Cashflow(ctx context.Context, r period.DateRange) (*Cashflow, error) {
	opening, entries, err := s.snapshot(ctx, r)
	if err != nil {
		return nil, err
	}

	cf := FoldCashflow(r, opening, entries)

	return &cf, nil
}

func (s *Service) snapshot(ctx context.Context, r period.DateRange) (money.Money, []*Entry, error) {
	opening, entries, err := s.repo.Snapshot(ctx, r)
	if err != nil {
		return money.Money{}, nil, fmt.Errorf("reading ledger snapshot: %w", err)
	}

	return opening, entries, nil
}
