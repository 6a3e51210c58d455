package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=discount
type Repository interface {
	CreateGrant(ctx context.Context, g *Grant) error
	// FindActive returns the most recently created grant covering the period,
	// or nil when there is none.
	FindActive(ctx context.Context, studentID string, p period.Period) (*Grant, error)
	ListGrants(ctx context.Context, studentID string) ([]*Grant, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type GrantParams struct {
	StudentID string
	Percent   money.Percent
	Reason    string
	GrantedBy string
	From      period.Period
	To        period.Period
}

var hundredPercent = money.MustPercent("100")

func (s *Service) Grant(ctx context.Context, params GrantParams) (*Grant, error) {
	switch {
	case params.StudentID == "":
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidGrant)
	case params.Percent.IsNegative() || params.Percent.Compare(hundredPercent) > 0:
		return nil, fmt.Errorf("%w: percent %s outside 0-100", ErrInvalidGrant, params.Percent)
	case params.From.IsZero() || params.To.IsZero():
		return nil, fmt.Errorf("%w: period range is required", ErrInvalidGrant)
	case params.To.Before(params.From):
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidGrant, params.To, params.From)
	}

	g := &Grant{
		ID:        uuid.New(),
		StudentID: params.StudentID,
		Percent:   params.Percent,
		Reason:    params.Reason,
		GrantedBy: params.GrantedBy,
		From:      params.From,
		To:        params.To,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.CreateGrant(ctx, g); err != nil {
		return nil, fmt.Errorf("creating grant: %w", err)
	}

	return g, nil
}

// ActiveFor returns the grant in force for the student's period, or nil.
func (s *Service) ActiveFor(ctx context.Context, studentID string, p period.Period) (*Grant, error) {
	g, err := s.repo.FindActive(ctx, studentID, p)
	if err != nil {
		return nil, fmt.Errorf("finding active grant: %w", err)
	}

	return g, nil
}

func (s *Service) List(ctx context.Context, studentID string) ([]*Grant, error) {
	return s.repo.ListGrants(ctx, studentID)
}
