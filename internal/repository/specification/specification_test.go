package specification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	Id uuid.UUID
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost", PreferSimpleProtocol: true}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestSpecificationsComposeIntoSQL(t *testing.T) {
	db := dryRun(t)
	userID := uuid.New()

	q := db.Table("conversations")
	for _, spec := range []Specification{
		UserOwnedBy{UserID: userID},
		ByFileKey{FileKey: "uploads/1a.pdf"},
		OrderBy{Field: "updated_at", Desc: true},
		Pagination{Limit: 10, Offset: 20},
	} {
		q = spec.Apply(q)
	}

	var rows []row
	stmt := q.Find(&rows).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "user_id = $1")
	assert.Contains(t, sql, "file_key = $2")
	assert.Contains(t, sql, "ORDER BY updated_at DESC")
	assert.Contains(t, sql, "LIMIT $3 OFFSET $4")
	assert.Equal(t, []interface{}{userID, "uploads/1a.pdf", 10, 20}, stmt.Vars)
}

func TestFilter(t *testing.T) {
	db := dryRun(t)

	var rows []row
	stmt := Filter("role", "user").Apply(db.Table("messages")).Find(&rows).Statement
	assert.Contains(t, stmt.SQL.String(), "role = $1")
}
