package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"property-service/internal/models"
)

func TestRoomRepository_CreateBumpsHouseCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	house := &models.House{Name: "Hoa Sen House", Address: "5 Le Loi"}
	require.NoError(t, db.Create(house).Error)

	room, err := repo.Create(ctx, &models.Room{
		HouseID:    house.ID,
		RoomNumber: "201",
		Floor:      2,
		BaseRent:   2500000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomVacant, room.Status)

	var reloaded models.House
	require.NoError(t, db.First(&reloaded, "id = ?", house.ID).Error)
	assert.Equal(t, 1, reloaded.TotalRooms)
}

func TestRoomRepository_CreateUnknownHouse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)

	_, err := repo.Create(context.Background(), &models.Room{
		HouseID:    uuid.New(),
		RoomNumber: "999",
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepository_CurrentContract(t *testing.T) {
	db := setupTestDB(t)
	roomRepo := NewRoomRepository(db)
	contractRepo := NewContractRepository(db)
	ctx := context.Background()

	room := createTestRoom(t, db)

	_, err := roomRepo.CurrentContract(ctx, room.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	lease, err := contractRepo.CreateLease(ctx, leaseParams(room.ID, "0901112223", "445566"))
	require.NoError(t, err)

	current, err := roomRepo.CurrentContract(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.ID, current.ID)
	require.NotNil(t, current.Tenant)
	assert.Equal(t, "0901112223", current.Tenant.Phone)

	_, err = contractRepo.Terminate(ctx, lease.ID)
	require.NoError(t, err)

	_, err = roomRepo.CurrentContract(ctx, room.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepository_HouseOccupancy(t *testing.T) {
	db := setupTestDB(t)
	roomRepo := NewRoomRepository(db)
	contractRepo := NewContractRepository(db)
	ctx := context.Background()

	room := createTestRoom(t, db)
	_, err := roomRepo.Create(ctx, &models.Room{HouseID: room.HouseID, RoomNumber: "102", Floor: 1})
	require.NoError(t, err)

	_, err = contractRepo.CreateLease(ctx, leaseParams(room.ID, "0903334445", "112233"))
	require.NoError(t, err)

	summary, err := roomRepo.HouseOccupancy(ctx, room.HouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(1), summary.Occupied)
	assert.Equal(t, int64(1), summary.Vacant)
}
