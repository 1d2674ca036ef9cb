package handlers

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/services"

	"github.com/gofrs/uuid"
)

type registerRequest struct {
	Name     string      `json:"name" binding:"required,min=2,max=50"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Role and status are checked by the services so that a bad value is a 400.
type roleRequest struct {
	Role models.Role `json:"role"`
}

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

type createTaskRequest struct {
	Title       string              `json:"title" binding:"required,min=3,max=100"`
	Description string              `json:"description" binding:"max=500"`
	Status      models.TaskStatus   `json:"status" binding:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Category    string              `json:"category" binding:"max=50"`
	DueDate     *time.Time          `json:"dueDate"`
	AssignedTo  *string             `json:"assignedTo" binding:"omitempty,uuid"`
}

type updateTaskRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string              `json:"description" binding:"omitempty,max=500"`
	Status      *models.TaskStatus   `json:"status" binding:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Category    *string              `json:"category" binding:"omitempty,max=50"`
	DueDate     *time.Time           `json:"dueDate"`
	AssignedTo  *string              `json:"assignedTo" binding:"omitempty,uuid"`

	clearDueDate  bool
	clearAssignee bool
}

// UnmarshalJSON tells an explicit null apart from an omitted key, so that
// "dueDate": null and "assignedTo": null clear the stored value.
func (r *updateTaskRequest) UnmarshalJSON(data []byte) error {
	type plain updateTaskRequest
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	r.clearDueDate = isNull(keys, "dueDate")
	r.clearAssignee = isNull(keys, "assignedTo")
	return nil
}

func isNull(keys map[string]json.RawMessage, key string) bool {
	raw, ok := keys[key]
	return ok && string(bytes.TrimSpace(raw)) == "null"
}

func (r createTaskRequest) input() (services.TaskInput, error) {
	in := services.TaskInput{
		Title:       &r.Title,
		Description: &r.Description,
		DueDate:     r.DueDate,
	}
	if r.Status != "" {
		in.Status = &r.Status
	}
	if r.Priority != "" {
		in.Priority = &r.Priority
	}
	if r.Category != "" {
		in.Category = &r.Category
	}
	assigned, err := parseOptionalID(r.AssignedTo)
	in.AssignedTo = assigned
	return in, err
}

func (r updateTaskRequest) input() (services.TaskInput, error) {
	in := services.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Category:    r.Category,
		DueDate:     r.DueDate,

		ClearDueDate:  r.clearDueDate,
		ClearAssignee: r.clearAssignee,
	}
	assigned, err := parseOptionalID(r.AssignedTo)
	in.AssignedTo = assigned
	return in, err
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.FromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperrors.ErrInvalidID
	}
	return &id, nil
}

type itemRequest struct {
	Title       string  `json:"title" binding:"max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type createItemRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

type carRequest struct {
	Brand        string   `json:"brand" binding:"required,max=50"`
	Model        string   `json:"model" binding:"required,max=50"`
	Year         int      `json:"year" binding:"required"`
	Price        *float64 `json:"price" binding:"required,gte=0"`
	Mileage      *int     `json:"mileage" binding:"required,gte=0"`
	Color        string   `json:"color" binding:"required,max=30"`
	Transmission string   `json:"transmission" binding:"required,oneof=Manual Automatic CVT Semi-Automatic"`
	FuelType     string   `json:"fuelType" binding:"required,oneof=Gasoline Diesel Electric Hybrid Plugin-Hybrid"`
	Condition    string   `json:"condition" binding:"required,oneof=New Used 'Certified Pre-Owned'"`
	VIN          *string  `json:"vin" binding:"omitempty,max=17"`
	Description  string   `json:"description" binding:"max=1000"`
	ImageURL     string   `json:"imageUrl" binding:"omitempty,url"`
	Status       string   `json:"status" binding:"omitempty,oneof=Available Sold Reserved"`
}

func (r carRequest) model() models.Car {
	return models.Car{
		Brand:        r.Brand,
		Model:        r.Model,
		Year:         r.Year,
		Price:        *r.Price,
		Mileage:      *r.Mileage,
		Color:        r.Color,
		Transmission: r.Transmission,
		FuelType:     r.FuelType,
		Condition:    r.Condition,
		VIN:          r.VIN,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		Status:       r.Status,
	}
}
