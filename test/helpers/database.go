package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when t finishes
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
