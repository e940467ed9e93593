package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/agape-academy/academy-api/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	actor := "user-1"
	resourceID := "course-1"
	entry := &models.AuditLog{
		ActorID:    &actor,
		Action:     models.AuditActionCreate,
		Resource:   "course",
		ResourceID: &resourceID,
		NewValues:  []byte(`{"title":"Intro to Scripture"}`),
		IPAddress:  "10.0.0.1",
		UserAgent:  "test-agent",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs")).
		WithArgs("user-1", "course").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "actor_id", "action", "resource", "resource_id", "old_values", "new_values", "ip_address", "user_agent", "created_at"}).
		AddRow("log-1", "user-1", "UPDATE", "course", "course-1", `{}`, `{}`, "10.0.0.1", "test-agent", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, actor_id, action, resource")).
		WithArgs("user-1", "course").
		WillReturnRows(rows)

	entries, total, err := repo.List(context.Background(), models.AuditFilter{
		ActorID:   "user-1",
		Resource:  "course",
		PageQuery: models.PageQuery{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, entries, 1)
	require.Equal(t, "log-1", entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
