package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"property-service/internal/cache"
	"property-service/internal/models"
	"property-service/internal/repository"
)

// PropertyService handles house and room management
type PropertyService struct {
	houseRepo      repository.HouseRepository
	roomRepo       repository.RoomRepository
	occupancyCache *cache.OccupancyCache
	logger         *logrus.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(houseRepo repository.HouseRepository, roomRepo repository.RoomRepository, occupancyCache *cache.OccupancyCache, logger *logrus.Logger) *PropertyService {
	return &PropertyService{
		houseRepo:      houseRepo,
		roomRepo:       roomRepo,
		occupancyCache: occupancyCache,
		logger:         logger,
	}
}

// CreateHouse registers a boarding house.
func (s *PropertyService) CreateHouse(ctx context.Context, req *models.CreateHouseRequest) (*models.House, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewValidationError("name", "is required", nil)
	}

	house, err := s.houseRepo.Create(ctx, &models.House{
		Name:        strings.TrimSpace(req.Name),
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to create house")
		return nil, fmt.Errorf("failed to create house: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"house_id": house.ID,
		"name":     house.Name,
	}).Info("House created")
	return house, nil
}

// GetHouse returns one house.
func (s *PropertyService) GetHouse(ctx context.Context, id uuid.UUID) (*models.House, error) {
	house, err := s.houseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("house", "no such house")
		}
		return nil, fmt.Errorf("failed to load house: %w", err)
	}
	return house, nil
}

// CreateRoom registers a vacant room under a house and bumps the
// house's room counter.
func (s *PropertyService) CreateRoom(ctx context.Context, req *models.CreateRoomRequest) (*models.Room, error) {
	if strings.TrimSpace(req.RoomNumber) == "" {
		return nil, NewValidationError("room_number", "is required", nil)
	}
	if req.BaseRent < 0 {
		return nil, NewValidationError("base_rent", "must not be negative", nil)
	}

	room, err := s.roomRepo.Create(ctx, &models.Room{
		HouseID:    req.HouseID,
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		Floor:      req.Floor,
		AreaM2:     req.AreaM2,
		BaseRent:   req.BaseRent,
		Facilities: req.Facilities,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("house", "no such house")
		}
		s.logger.WithError(err).Error("Failed to create room")
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.occupancyCache.Invalidate(room.HouseID)

	s.logger.WithFields(logrus.Fields{
		"room_id":     room.ID,
		"house_id":    room.HouseID,
		"room_number": room.RoomNumber,
	}).Info("Room created")
	return room, nil
}

// RoomView is a room read enriched with its occupant, when any.
type RoomView struct {
	*models.Room
	CurrentTenant     *models.Tenant `json:"currentTenant,omitempty"`
	CurrentContractID *uuid.UUID     `json:"currentContractId,omitempty"`
}

// GetRoom returns one room with its house and current occupant.
func (s *PropertyService) GetRoom(ctx context.Context, id uuid.UUID) (*RoomView, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("room", "no such room")
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	view := &RoomView{Room: room}
	contract, err := s.roomRepo.CurrentContract(ctx, id)
	switch {
	case err == nil:
		view.CurrentTenant = contract.Tenant
		view.CurrentContractID = &contract.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		// vacant room
	default:
		return nil, fmt.Errorf("failed to load room occupant: %w", err)
	}
	return view, nil
}

// GetHouseOccupancy returns the house's room counts, served from the
// cache when fresh.
func (s *PropertyService) GetHouseOccupancy(ctx context.Context, houseID uuid.UUID) (*models.HouseOccupancy, error) {
	if summary, ok := s.occupancyCache.Get(houseID); ok {
		return summary, nil
	}

	summary, err := s.roomRepo.HouseOccupancy(ctx, houseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("house", "no such house")
		}
		return nil, fmt.Errorf("failed to load occupancy: %w", err)
	}

	s.occupancyCache.Set(summary)
	return summary, nil
}

// InvalidateOccupancy drops the cached counts after a lifecycle change
// touched a room's status.
func (s *PropertyService) InvalidateOccupancy(houseID uuid.UUID) {
	s.occupancyCache.Invalidate(houseID)
}
