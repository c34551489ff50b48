package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already used")
	ErrUserNotFound = errors.New("user not found")
)

// Users stores local accounts.
type Users interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (User, error)
}

type GormUsers struct {
	DB *gorm.DB
}

func (s *GormUsers) Create(ctx context.Context, u *User) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// A concurrent register can pass the count check; the email unique index
// then rejects the insert with 23505.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *GormUsers) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

type MemUsers struct {
	mu      sync.Mutex
	nextID  uint64
	byEmail map[string]User
}

func NewMemUsers() *MemUsers {
	return &MemUsers{byEmail: map[string]User{}}
}

func (s *MemUsers) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.byEmail[u.Email] = *u
	return nil
}

func (s *MemUsers) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}
