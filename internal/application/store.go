package application

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store is the record store behind Service. Every method takes the owner
// and must never read or touch rows of another owner.
type Store interface {
	List(ctx context.Context, owner string, c Criteria) ([]Application, error)
	Get(ctx context.Context, owner string, id uint64) (Application, error)
	// FindDuplicate returns the oldest record with exactly this company and
	// role, or nil.
	FindDuplicate(ctx context.Context, owner, company, role string) (*Application, error)
	Insert(ctx context.Context, a *Application) error
	UpdateStatus(ctx context.Context, owner string, id uint64, st Status) (int64, error)
	Delete(ctx context.Context, owner string, id uint64) (int64, error)
	// DeleteAll removes every record of owner, or only those with status st
	// when st is not empty.
	DeleteAll(ctx context.Context, owner string, st Status) (int64, error)
	CountByStatus(ctx context.Context, owner string) (map[Status]int64, error)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) List(ctx context.Context, owner string, c Criteria) ([]Application, error) {
	var rows []Application
	q := c.Apply(s.DB.WithContext(ctx).Model(&Application{}), owner)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) Get(ctx context.Context, owner string, id uint64) (Application, error) {
	var a Application
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Application{}, ErrNotFound
	}
	return a, err
}

func (s *GormStore) FindDuplicate(ctx context.Context, owner, company, role string) (*Application, error) {
	var rows []Application
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND company = ? AND role = ?", owner, company, role).
		Order("id asc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) Insert(ctx context.Context, a *Application) error {
	err := s.DB.WithContext(ctx).Create(a).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) UpdateStatus(ctx context.Context, owner string, id uint64, st Status) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&Application{}).
		Where("id = ? AND user_id = ?", id, owner).
		Update("status", string(st))
	return res.RowsAffected, res.Error
}

func (s *GormStore) Delete(ctx context.Context, owner string, id uint64) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&Application{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) DeleteAll(ctx context.Context, owner string, st Status) (int64, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", owner)
	if st != "" {
		q = q.Where("status = ?", string(st))
	}
	res := q.Delete(&Application{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) CountByStatus(ctx context.Context, owner string) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	err := s.DB.WithContext(ctx).
		Model(&Application{}).
		Select("status, count(*) as count").
		Where("user_id = ?", owner).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

// 23505 = unique_violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
