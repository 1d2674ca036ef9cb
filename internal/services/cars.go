package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"

	"github.com/gofrs/uuid"
)

type CarService interface {
	List(ctx context.Context) ([]models.Car, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Car, error)
	Create(ctx context.Context, p Principal, car models.Car) (*models.Car, error)
	Update(ctx context.Context, p Principal, id uuid.UUID, car models.Car) (*models.Car, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
}

type CarServiceImpl struct {
	cars repositories.CarRepository
	now  func() time.Time
}

func NewCarService(cars repositories.CarRepository) *CarServiceImpl {
	return &CarServiceImpl{cars: cars, now: time.Now}
}

func (s *CarServiceImpl) List(ctx context.Context) ([]models.Car, error) {
	return s.cars.List(ctx)
}

func (s *CarServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	return s.cars.FindByID(ctx, id)
}

func (s *CarServiceImpl) Create(ctx context.Context, p Principal, car models.Car) (*models.Car, error) {
	car.ID = uuid.Must(uuid.NewV4())
	car.CreatedBy = p.UserID
	car.Normalize()
	if err := s.validate(&car); err != nil {
		return nil, err
	}
	if err := s.cars.Create(ctx, &car); err != nil {
		return nil, vinConflict(err)
	}
	return &car, nil
}

// Update replaces the editable fields; id, owner and creation time are kept.
func (s *CarServiceImpl) Update(ctx context.Context, p Principal, id uuid.UUID, car models.Car) (*models.Car, error) {
	existing, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.CanAccess(existing.CreatedBy); err != nil {
		return nil, err
	}

	car.ID = existing.ID
	car.CreatedBy = existing.CreatedBy
	car.CreatedAt = existing.CreatedAt
	car.Normalize()
	if err := s.validate(&car); err != nil {
		return nil, err
	}
	if err := s.cars.Update(ctx, &car); err != nil {
		return nil, vinConflict(err)
	}
	return &car, nil
}

func (s *CarServiceImpl) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.CanAccess(car.CreatedBy); err != nil {
		return err
	}
	return s.cars.Delete(ctx, id)
}

// validate covers the rules that request binding cannot express, such as
// the year range that moves with the calendar.
func (s *CarServiceImpl) validate(car *models.Car) error {
	verr := &apperrors.ValidationError{}
	if maxYear := models.MaxCarYear(s.now()); car.Year < models.MinCarYear || car.Year > maxYear {
		verr.Add("year", fmt.Sprintf("year must be between %d and %d", models.MinCarYear, maxYear))
	}
	if car.Price < 0 {
		verr.Add("price", "price cannot be negative")
	}
	if car.Mileage < 0 {
		verr.Add("mileage", "mileage cannot be negative")
	}
	if !slices.Contains(models.CarTransmissions, car.Transmission) {
		verr.Add("transmission", "invalid transmission")
	}
	if !slices.Contains(models.CarFuelTypes, car.FuelType) {
		verr.Add("fuelType", "invalid fuel type")
	}
	if !slices.Contains(models.CarConditions, car.Condition) {
		verr.Add("condition", "invalid condition")
	}
	if !slices.Contains(models.CarStatuses, car.Status) {
		verr.Add("status", "invalid status")
	}
	if car.VIN != nil && len(*car.VIN) > 17 {
		verr.Add("vin", "VIN cannot exceed 17 characters")
	}
	return verr.OrNil()
}

func vinConflict(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.ErrDuplicateVIN
	}
	return err
}
