package application

import (
	"strings"

	"gorm.io/gorm"
)

// Criteria is the optional filter part of a list query. The owner scope is
// not part of Criteria; it is always supplied separately so it can never be
// left out.
type Criteria struct {
	Search string
	Status Status
}

// NewCriteria normalizes raw query values. A blank search and a blank or
// "All" status mean no filter. Any other unknown status is rejected. A
// non-blank search is kept as given, surrounding spaces included.
func NewCriteria(search, status string) (Criteria, error) {
	if strings.TrimSpace(search) == "" {
		search = ""
	}
	c := Criteria{Search: search}

	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, StatusAll) {
		return c, nil
	}
	st, err := ParseStatus(status)
	if err != nil {
		return Criteria{}, err
	}
	c.Status = st
	return c, nil
}

func (c Criteria) HasSearch() bool { return c.Search != "" }
func (c Criteria) HasStatus() bool { return c.Status != "" }

// Apply scopes q to owner and adds the optional predicates. Every value is
// a bound parameter.
func (c Criteria) Apply(q *gorm.DB, owner string) *gorm.DB {
	q = q.Where("user_id = ?", owner)

	if c.HasSearch() {
		pattern := "%" + escapeLike(c.Search) + "%"
		q = q.Where("(company ILIKE ? OR role ILIKE ?)", pattern, pattern)
	}
	if c.HasStatus() {
		q = q.Where("status = ?", string(c.Status))
	}

	return q.Order("applied_at desc").Order("id desc")
}

// Matches is the in-memory equivalent of Apply's filter predicates.
func (c Criteria) Matches(a Application) bool {
	if c.HasStatus() && a.Status != c.Status {
		return false
	}
	if c.HasSearch() {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(a.Company), needle) &&
			!strings.Contains(strings.ToLower(a.Role), needle) {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern (postgres uses
// backslash as the default escape character).
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
