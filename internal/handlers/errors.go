package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/trip-service/internal/models"
	"github.com/smarttransit/trip-service/pkg/upstream"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the JSON body of writes that return only a confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// TripResponse is the JSON body of writes that return the affected trip
type TripResponse struct {
	Message string       `json:"message"`
	Trip    *models.Trip `json:"trip"`
}

// writeError maps a service error to its status code and response body.
// Unclassified errors are logged and answered with a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validationErr  *models.ValidationError
		notFoundErr    *upstream.NotFoundError
		unavailableErr *upstream.UnavailableError
		storageErr     *models.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validationErr.Error()})
	case errors.Is(err, models.ErrDuplicateTripID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "duplicate_trip_id", Message: err.Error()})
	case errors.Is(err, models.ErrTripNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Trip not found"})
	case errors.Is(err, models.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat_unavailable", Message: err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "upstream_not_found", Message: notFoundErr.Error()})
	case errors.As(err, &unavailableErr):
		logger.WithError(err).WithField("service", unavailableErr.Service).Error("Upstream service unavailable")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upstream_unavailable", Message: "Upstream service unavailable"})
	case errors.As(err, &storageErr):
		logger.WithError(err).WithField("op", storageErr.Op).Error("Storage failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage_error", Message: "Server error"})
	default:
		logger.WithError(err).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Internal Server Error"})
	}
}

// bindingError converts a gin binding failure into a ValidationError naming the offending field
func bindingError(err error) *models.ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return models.NewValidationError(fe.Field(), "is required")
		default:
			return models.NewValidationError(fe.Field(), "is invalid")
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return models.NewValidationError(typeErr.Field, "has the wrong type")
	}

	if errors.Is(err, io.EOF) {
		return models.NewValidationError("", "request body is required")
	}

	return models.NewValidationError("", "invalid request body")
}
