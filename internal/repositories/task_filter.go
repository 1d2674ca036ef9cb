package repositories

import (
	"strings"

	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
)

type TaskFilter struct {
	// OwnerID restricts results to one owner; nil means every task.
	OwnerID   *uuid.UUID
	Status    models.TaskStatus
	Priority  models.TaskPriority
	Category  string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type sortField struct {
	column string
	bson   string
}

var taskSortFields = map[string]sortField{
	"createdAt": {"created_at", "createdAt"},
	"updatedAt": {"updated_at", "updatedAt"},
	"title":     {"title", "title"},
	"status":    {"status", "status"},
	"priority":  {"priority", "priority"},
	"dueDate":   {"due_date", "dueDate"},
	"category":  {"category", "category"},
}

// IsTaskSortField reports whether the name is accepted by TaskFilter.SortBy.
func IsTaskSortField(name string) bool {
	_, ok := taskSortFields[name]
	return ok
}

// Normalize fills defaults: page 1, limit 10 (at most 50), newest first.
func (f TaskFilter) Normalize() TaskFilter {
	f.Page, f.Limit = models.NormalizePage(f.Page, f.Limit)
	if !IsTaskSortField(f.SortBy) {
		f.SortBy = "createdAt"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		f.SortOrder = "asc"
	} else {
		f.SortOrder = "desc"
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func (f TaskFilter) sort() sortField {
	return taskSortFields[f.SortBy]
}

func (f TaskFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

// likePattern escapes LIKE wildcards and wraps the term for substring search.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
