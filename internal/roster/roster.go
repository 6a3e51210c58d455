// Package roster keeps the enrolment feed the invoice generator bills from.
// Students and classes are owned by the portal's CRUD system; this is only a
// synced copy of who is active in which class.
package roster

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidEntry = errors.New("invalid roster entry")

type Entry struct {
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

//go:generate mockgen -source=roster.go -destination=repository_mock.go -package=roster
type Repository interface {
	// Replace makes entries the whole roster: students missing from it are
	// kept but marked inactive.
	Replace(ctx context.Context, entries []Entry) error
	ListActive(ctx context.Context) ([]Entry, error)
	List(ctx context.Context) ([]Entry, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Sync replaces the roster with the feed.
func (s *Service) Sync(ctx context.Context, entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	now := s.now().UTC()

	for i := range entries {
		e := &entries[i]

		if e.StudentID == "" || e.ClassID == "" {
			return fmt.Errorf("%w: row %d needs student and class", ErrInvalidEntry, i+1)
		}

		if _, dup := seen[e.StudentID]; dup {
			return fmt.Errorf("%w: student %s listed twice", ErrInvalidEntry, e.StudentID)
		}

		seen[e.StudentID] = struct{}{}
		e.UpdatedAt = now
	}

	if err := s.repo.Replace(ctx, entries); err != nil {
		return fmt.Errorf("replacing roster: %w", err)
	}

	return nil
}

// Active lists the students to bill, ordered by student id.
func (s *Service) Active(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active roster: %w", err)
	}

	return entries, nil
}

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}
