package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexStatements(t *testing.T) {
	withUnique := indexStatements(true)
	assert.Contains(t, strings.Join(withUnique, "\n"), "create unique index if not exists uq_applications_user_company_role")

	without := indexStatements(false)
	joined := strings.Join(without, "\n")
	assert.NotContains(t, joined, "create unique index")
	assert.Contains(t, joined, "drop index if exists uq_applications_user_company_role")

	assert.Equal(t, withUnique[:2], without[:2])
}
