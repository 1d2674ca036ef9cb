package repositories

import (
	"time"

	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
)

// Mongo documents use string ids so that records stay readable in the shell
// and ids round-trip unchanged through the API.

type userDocument struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Email       string     `bson:"email"`
	Password    string     `bson:"password"`
	Role        string     `bson:"role"`
	Active      bool       `bson:"active"`
	LastLoginAt *time.Time `bson:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func newUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		Role:        string(u.Role),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (d userDocument) model() models.User {
	return models.User{
		ID:          uuid.FromStringOrNil(d.ID),
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		Role:        models.Role(d.Role),
		Active:      d.Active,
		LastLoginAt: d.LastLoginAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type taskDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	Category    string     `bson:"category"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
	Owner       string     `bson:"owner"`
	AssignedTo  string     `bson:"assignedTo,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func newTaskDocument(t *models.Task) taskDocument {
	d := taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    t.Category,
		DueDate:     t.DueDate,
		Owner:       t.OwnerID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo.Valid {
		d.AssignedTo = t.AssignedTo.UUID.String()
	}
	return d
}

func (d taskDocument) model() models.Task {
	t := models.Task{
		ID:          uuid.FromStringOrNil(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Status:      models.TaskStatus(d.Status),
		Priority:    models.TaskPriority(d.Priority),
		Category:    d.Category,
		DueDate:     d.DueDate,
		OwnerID:     uuid.FromStringOrNil(d.Owner),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if id, err := uuid.FromString(d.AssignedTo); err == nil {
		t.AssignedTo = uuid.NullUUID{UUID: id, Valid: true}
	}
	return t
}

type itemDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	OwnerID     string    `bson:"ownerId"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func newItemDocument(i *models.Item) itemDocument {
	return itemDocument{
		ID:          i.ID.String(),
		Title:       i.Title,
		Description: i.Description,
		OwnerID:     i.OwnerID.String(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func (d itemDocument) model() models.Item {
	return models.Item{
		ID:          uuid.FromStringOrNil(d.ID),
		Title:       d.Title,
		Description: d.Description,
		OwnerID:     uuid.FromStringOrNil(d.OwnerID),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type carDocument struct {
	ID           string    `bson:"_id"`
	Brand        string    `bson:"brand"`
	Model        string    `bson:"model"`
	Year         int       `bson:"year"`
	Price        float64   `bson:"price"`
	Mileage      int       `bson:"mileage"`
	Color        string    `bson:"color"`
	Transmission string    `bson:"transmission"`
	FuelType     string    `bson:"fuelType"`
	Condition    string    `bson:"condition"`
	VIN          *string   `bson:"vin,omitempty"`
	Description  string    `bson:"description"`
	ImageURL     string    `bson:"imageUrl"`
	Status       string    `bson:"status"`
	CreatedBy    string    `bson:"createdBy"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newCarDocument(c *models.Car) carDocument {
	return carDocument{
		ID:           c.ID.String(),
		Brand:        c.Brand,
		Model:        c.Model,
		Year:         c.Year,
		Price:        c.Price,
		Mileage:      c.Mileage,
		Color:        c.Color,
		Transmission: c.Transmission,
		FuelType:     c.FuelType,
		Condition:    c.Condition,
		VIN:          c.VIN,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		Status:       c.Status,
		CreatedBy:    c.CreatedBy.String(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (d carDocument) model() models.Car {
	return models.Car{
		ID:           uuid.FromStringOrNil(d.ID),
		Brand:        d.Brand,
		Model:        d.Model,
		Year:         d.Year,
		Price:        d.Price,
		Mileage:      d.Mileage,
		Color:        d.Color,
		Transmission: d.Transmission,
		FuelType:     d.FuelType,
		Condition:    d.Condition,
		VIN:          d.VIN,
		Description:  d.Description,
		ImageURL:     d.ImageURL,
		Status:       d.Status,
		CreatedBy:    uuid.FromStringOrNil(d.CreatedBy),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type tokenDocument struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"userId"`
	RefreshToken string    `bson:"refreshToken"`
	ExpiresAt    time.Time `bson:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func newTokenDocument(t *models.Token) tokenDocument {
	return tokenDocument{
		ID:           t.ID.String(),
		UserID:       t.UserID.String(),
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		CreatedAt:    t.CreatedAt,
	}
}

func (d tokenDocument) model() models.Token {
	return models.Token{
		ID:           uuid.FromStringOrNil(d.ID),
		UserID:       uuid.FromStringOrNil(d.UserID),
		RefreshToken: d.RefreshToken,
		ExpiresAt:    d.ExpiresAt,
		CreatedAt:    d.CreatedAt,
	}
}
