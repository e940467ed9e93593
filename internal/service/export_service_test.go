package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/jobs"
	"github.com/agape-academy/academy-api/pkg/storage"
)

func newExportService(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-test-secret", time.Hour)

	users := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "maria@example.org", DisplayName: "Maria", Role: models.RoleStudent, IsActive: true},
	}}
	courses := &mockCourseRepo{}
	tickets := &mockTicketRepo{}

	return NewExportService(users, courses, tickets, store, signer,
		jobs.QueueConfig{Workers: 1, MaxRetries: 1}, zap.NewNop())
}

func TestExportServiceRequestValidation(t *testing.T) {
	svc := newExportService(t)
	admin := &models.Identity{UserID: "a1", Role: models.RoleAdmin}

	_, err := svc.Request(context.Background(), admin, "GRADES", models.ExportFormatCSV)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)

	_, err = svc.Request(context.Background(), admin, models.ExportResourceUsers, "XLSX")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestExportServiceUsersCSVLifecycle(t *testing.T) {
	svc := newExportService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	admin := &models.Identity{UserID: "a1", Role: models.RoleAdmin}
	job, err := svc.Request(ctx, admin, models.ExportResourceUsers, models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusPending, job.Status)
	assert.Equal(t, "a1", job.RequestedBy)

	require.Eventually(t, func() bool {
		current, err := svc.Get(ctx, admin, job.ID)
		return err == nil && current.Status == models.ExportStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	completed, err := svc.Get(ctx, admin, job.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(completed.DownloadURL, "/api/exports/download?token="))
	require.NotNil(t, completed.CompletedAt)

	token := strings.TrimPrefix(completed.DownloadURL, "/api/exports/download?token=")
	path, err := svc.ResolveDownload(token)
	require.NoError(t, err)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "id,email,displayName,role,active")
	assert.Contains(t, content, "maria@example.org")
}

func TestExportServiceGetOwnership(t *testing.T) {
	svc := newExportService(t)
	admin := &models.Identity{UserID: "a1", Role: models.RoleAdmin}
	job, err := svc.Request(context.Background(), admin, models.ExportResourceTickets, models.ExportFormatCSV)
	require.NoError(t, err)

	stranger := &models.Identity{UserID: "s1", Role: models.RoleStudent}
	_, err = svc.Get(context.Background(), stranger, job.ID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	other := &models.Identity{UserID: "a2", Role: models.RoleSuperAdmin}
	_, err = svc.Get(context.Background(), other, job.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), admin, "missing")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestExportServiceResolveDownloadRejectsBadToken(t *testing.T) {
	svc := newExportService(t)

	_, err := svc.ResolveDownload("not-a-real-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
}
