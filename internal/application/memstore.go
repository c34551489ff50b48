package application

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-process Store. It backs STORE=memory and the tests.
// With Unique set it behaves like the postgres unique index on
// (user_id, company, role).
type MemStore struct {
	Unique bool

	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]Application
}

func NewMemStore() *MemStore {
	return &MemStore{rows: map[uint64]Application{}}
}

func (s *MemStore) List(_ context.Context, owner string, c Criteria) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Application, 0)
	for _, a := range s.rows {
		if a.UserID == owner && c.Matches(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.After(out[j].AppliedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStore) Get(_ context.Context, owner string, id uint64) (Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.rows[id]
	if !ok || a.UserID != owner {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (s *MemStore) FindDuplicate(_ context.Context, owner, company, role string) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.findLocked(owner, company, role)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemStore) Insert(_ context.Context, a *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Unique {
		if _, ok := s.findLocked(a.UserID, a.Company, a.Role); ok {
			return ErrDuplicate
		}
	}
	s.nextID++
	a.ID = s.nextID
	s.rows[a.ID] = *a
	return nil
}

func (s *MemStore) UpdateStatus(_ context.Context, owner string, id uint64, st Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.rows[id]
	if !ok || a.UserID != owner {
		return 0, nil
	}
	a.Status = st
	s.rows[id] = a
	return 1, nil
}

func (s *MemStore) Delete(_ context.Context, owner string, id uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.rows[id]
	if !ok || a.UserID != owner {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

func (s *MemStore) DeleteAll(_ context.Context, owner string, st Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, a := range s.rows {
		if a.UserID != owner || (st != "" && a.Status != st) {
			continue
		}
		delete(s.rows, id)
		n++
	}
	return n, nil
}

func (s *MemStore) CountByStatus(_ context.Context, owner string) (map[Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[Status]int64{}
	for _, a := range s.rows {
		if a.UserID == owner {
			out[a.Status]++
		}
	}
	return out, nil
}

// findLocked returns the lowest-id match. Caller holds mu.
func (s *MemStore) findLocked(owner, company, role string) (Application, bool) {
	var (
		found Application
		ok    bool
	)
	for _, a := range s.rows {
		if a.UserID != owner || a.Company != company || a.Role != role {
			continue
		}
		if !ok || a.ID < found.ID {
			found, ok = a, true
		}
	}
	return found, ok
}
