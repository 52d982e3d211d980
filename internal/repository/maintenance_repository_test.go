package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-service/internal/models"
)

func TestMaintenanceLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	request, err := repo.Create(ctx, &models.MaintenanceRequest{
		RoomID:   contract.RoomID,
		TenantID: contract.TenantID,
		Title:    "Leaking faucet",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceNew, request.Status)

	inProgress, err := repo.Resolve(ctx, request.ID, models.MaintenanceInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceInProgress, inProgress.Status)
	assert.Nil(t, inProgress.ResolvedDate)

	completed, err := repo.Resolve(ctx, request.ID, models.MaintenanceCompleted, "Replaced washer")
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceCompleted, completed.Status)
	assert.NotNil(t, completed.ResolvedDate)
	assert.Equal(t, "Replaced washer", completed.ResolutionNote)

	// Completed is terminal.
	_, err = repo.Cancel(ctx, request.ID)
	assert.ErrorIs(t, err, ErrMaintenanceTerminal)
	_, err = repo.Resolve(ctx, request.ID, models.MaintenanceInProgress, "")
	assert.ErrorIs(t, err, ErrMaintenanceTerminal)
}

func TestMaintenanceCancel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	request, err := repo.Create(ctx, &models.MaintenanceRequest{
		RoomID:   contract.RoomID,
		TenantID: contract.TenantID,
		Title:    "Broken window",
	})
	require.NoError(t, err)

	cancelled, err := repo.Cancel(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceCancelled, cancelled.Status)

	_, err = repo.Cancel(ctx, request.ID)
	assert.ErrorIs(t, err, ErrMaintenanceTerminal)
}

func TestMaintenanceListByTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	for _, title := range []string{"Leaking faucet", "Broken window"} {
		_, err := repo.Create(ctx, &models.MaintenanceRequest{
			RoomID:   contract.RoomID,
			TenantID: contract.TenantID,
			Title:    title,
		})
		require.NoError(t, err)
	}

	requests, err := repo.ListByTenant(ctx, contract.TenantID)
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}
