package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled}

func (s TaskStatus) IsValid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

func (p TaskPriority) IsValid() bool {
	for _, v := range TaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

const DefaultTaskCategory = "General"

type Task struct {
	ID          uuid.UUID     `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string        `json:"title" gorm:"size:100;not null"`
	Description string        `json:"description" gorm:"size:500;not null;default:''"`
	Status      TaskStatus    `json:"status" gorm:"size:16;not null;default:pending;index"`
	Priority    TaskPriority  `json:"priority" gorm:"size:16;not null;default:medium"`
	Category    string        `json:"category" gorm:"size:50;not null;default:General"`
	DueDate     *time.Time    `json:"dueDate"`
	OwnerID     uuid.UUID     `json:"owner" gorm:"type:uuid;not null;index"`
	AssignedTo  uuid.NullUUID `json:"assignedTo" gorm:"type:uuid"`
	CreatedAt   time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ApplyDefaults fills the zero-valued enum and category fields.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if t.Category == "" {
		t.Category = DefaultTaskCategory
	}
}

type StatusCount struct {
	Status TaskStatus `json:"status"`
	Count  int64      `json:"count"`
}

type PriorityCount struct {
	Priority TaskPriority `json:"priority"`
	Count    int64        `json:"count"`
}

type TaskStats struct {
	Total      int64           `json:"total"`
	ByStatus   []StatusCount   `json:"byStatus"`
	ByPriority []PriorityCount `json:"byPriority"`
}
