package application

import (
	"fmt"
	"strings"
	"time"
)

// Status is the pipeline stage of an application.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusWishlist  Status = "Wishlist"
)

// StatusAll is the filter sentinel meaning "no status filter".
const StatusAll = "All"

var Statuses = []Status{
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWishlist,
}

// ParseStatus returns the canonical Status for s, ignoring case and
// surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Application is one tracked job application. UserID is the owner and
// never changes after create.
type Application struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;index;not null" json:"user_id"`
	Company   string    `gorm:"type:text;not null" json:"company"`
	Role      string    `gorm:"type:text;not null" json:"role"`
	Status    Status    `gorm:"type:text;index;not null;default:'Applied'" json:"status"`
	AppliedAt time.Time `gorm:"type:timestamptz;not null" json:"applied_at"`
}

// Stats counts the caller's applications per status.
type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
}

func newStats() Stats {
	s := Stats{ByStatus: make(map[Status]int64, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	return s
}
