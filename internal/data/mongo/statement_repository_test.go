package mongo

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewStatementRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewStatementRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &StatementRepository{}, repo)
}

// Query behavior is covered against a live MongoDB in integration environments;
// the driver's concrete types do not lend themselves to unit mocking.
