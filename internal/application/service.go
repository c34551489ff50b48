package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	Store Store
	// Now is the clock used for applied_at. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

type CreateInput struct {
	Company string
	Role    string
	// Status is optional; empty means Applied.
	Status string
}

func (s *Service) List(ctx context.Context, owner string, c Criteria) ([]Application, error) {
	return s.Store.List(ctx, owner, c)
}

func (s *Service) Get(ctx context.Context, owner string, id uint64) (Application, error) {
	return s.Store.Get(ctx, owner, id)
}

// Create inserts a new application unless the owner already tracks the same
// company and role, in which case it returns a *ConflictError carrying the
// existing record. The check and the insert are separate statements; two
// concurrent identical creates can both pass the check unless the unique
// index is enabled.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (Application, error) {
	company := strings.TrimSpace(in.Company)
	role := strings.TrimSpace(in.Role)
	if company == "" {
		return Application{}, fmt.Errorf("%w: company required", ErrValidation)
	}
	if role == "" {
		return Application{}, fmt.Errorf("%w: role required", ErrValidation)
	}

	status := StatusApplied
	if strings.TrimSpace(in.Status) != "" {
		st, err := ParseStatus(in.Status)
		if err != nil {
			return Application{}, err
		}
		status = st
	}

	existing, err := s.Store.FindDuplicate(ctx, owner, company, role)
	if err != nil {
		return Application{}, err
	}
	if existing != nil {
		return Application{}, &ConflictError{Existing: *existing}
	}

	a := Application{
		UserID:    owner,
		Company:   company,
		Role:      role,
		Status:    status,
		AppliedAt: s.now(),
	}
	if err := s.Store.Insert(ctx, &a); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return Application{}, err
		}
		// lost the race against a concurrent create; report the winner
		existing, ferr := s.Store.FindDuplicate(ctx, owner, company, role)
		if ferr != nil {
			return Application{}, ferr
		}
		if existing == nil {
			return Application{}, err
		}
		return Application{}, &ConflictError{Existing: *existing}
	}
	return a, nil
}

// UpdateStatus changes the status of one of owner's records. A record that
// does not exist or belongs to someone else yields ErrNotFound.
func (s *Service) UpdateStatus(ctx context.Context, owner string, id uint64, status string) (Application, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return Application{}, err
	}

	n, err := s.Store.UpdateStatus(ctx, owner, id, st)
	if err != nil {
		return Application{}, err
	}
	if n == 0 {
		return Application{}, ErrNotFound
	}
	return s.Store.Get(ctx, owner, id)
}

// Delete is idempotent: deleting a missing record is not an error.
func (s *Service) Delete(ctx context.Context, owner string, id uint64) error {
	_, err := s.Store.Delete(ctx, owner, id)
	return err
}

// DeleteAll removes the owner's records, restricted to one status unless
// status is blank or "All". It returns the number of deleted records.
func (s *Service) DeleteAll(ctx context.Context, owner string, status string) (int64, error) {
	c, err := NewCriteria("", status)
	if err != nil {
		return 0, err
	}
	return s.Store.DeleteAll(ctx, owner, c.Status)
}

func (s *Service) Stats(ctx context.Context, owner string) (Stats, error) {
	counts, err := s.Store.CountByStatus(ctx, owner)
	if err != nil {
		return Stats{}, err
	}

	out := newStats()
	for st, n := range counts {
		out.ByStatus[st] = n
		out.Total += n
	}
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
