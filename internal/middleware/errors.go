package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"task-manager/api/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
	Detail  string                 `json:"detail,omitempty"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{apperrors.ErrBadRequest, http.StatusBadRequest},
	{apperrors.ErrInvalidID, http.StatusBadRequest},
	{apperrors.ErrInvalidStatus, http.StatusBadRequest},
	{apperrors.ErrInvalidRole, http.StatusBadRequest},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{apperrors.ErrAccountDisabled, http.StatusUnauthorized},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrDuplicateEmail, http.StatusConflict},
	{apperrors.ErrDuplicateVIN, http.StatusConflict},
	{apperrors.ErrConflict, http.StatusConflict},
	{apperrors.ErrUnknownReference, http.StatusUnprocessableEntity},
}

// ErrorHandler renders the last error a handler attached with c.Error.
// Detail for unexpected errors is only exposed outside production.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := Describe(err)
		if status == http.StatusInternalServerError {
			log.Printf("error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			if !production {
				body.Detail = err.Error()
			}
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// Describe maps an error to its HTTP status and response body.
func Describe(err error) (int, ErrorResponse) {
	var (
		verrs     validator.ValidationErrors
		appVerr   *apperrors.ValidationError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		timeErr   *time.ParseError
	)

	switch {
	case errors.As(err, &verrs):
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return http.StatusUnprocessableEntity, ErrorResponse{Message: "validation failed", Errors: fields}
	case errors.As(err, &appVerr):
		return http.StatusUnprocessableEntity, ErrorResponse{Message: "validation failed", Errors: appVerr.Fields}
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, ErrorResponse{Message: "invalid request body"}
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid value for field %s", typeErr.Field)}
	case errors.As(err, &timeErr):
		return http.StatusBadRequest, ErrorResponse{Message: "invalid date, expected RFC 3339"}
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status, ErrorResponse{Message: s.err.Error()}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Message: "internal server error"}
}

// AbortWithError writes the envelope for err and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	status, body := Describe(err)
	c.AbortWithStatusJSON(status, body)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid", "uuid4":
		return field + " must be a valid id"
	}
	return field + " is invalid"
}

// NotFound answers unmatched routes with the standard envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path),
		})
	}
}
