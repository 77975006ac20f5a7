package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/trip-service/internal/models"
)

// TripManager is the trip workflow the HTTP layer drives
type TripManager interface {
	CreateTrip(ctx context.Context, req *models.CreateTripRequest) (*models.Trip, error)
	GetTrip(tripID int64) (*models.Trip, error)
	ListByRoute(startLocation, endLocation, tripDate string, filters models.TripFilters) ([]models.Trip, error)
	ListBySchedule(scheduleID int64, tripDate string) ([]models.Trip, error)
	UpdateBookingStatus(tripID int64, status models.BookingStatus) error
	ConfirmSeat(tripID int64, seat int) (*models.Trip, error)
	DeleteTrip(tripID int64) error
}

// TripHandler handles trip HTTP requests
type TripHandler struct {
	trips  TripManager
	logger *logrus.Logger
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(trips TripManager, logger *logrus.Logger) *TripHandler {
	return &TripHandler{
		trips:  trips,
		logger: logger,
	}
}

// CreateTrip creates a trip enriched from the route, schedule and permit services
// POST /trip-service/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindingError(err))
		return
	}

	trip, err := h.trips.CreateTrip(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, TripResponse{
		Message: "Trip created successfully",
		Trip:    trip,
	})
}

// GetTripsByRouteAndDate lists trips between two locations on a date
// GET /trip-service/trips/:key/:sub/:tripDate?music=&ac=
func (h *TripHandler) GetTripsByRouteAndDate(c *gin.Context) {
	music, err := models.ParseFilterFlag("music", c.Query("music"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ac, err := models.ParseFilterFlag("ac", c.Query("ac"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	trips, err := h.trips.ListByRoute(c.Param("key"), c.Param("sub"), c.Param("tripDate"), models.TripFilters{
		Music: music,
		AC:    ac,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trips)
}

// GetTripsByScheduleAndDate lists trips of one schedule on a date
// GET /trip-service/trips/:key/:sub
func (h *TripHandler) GetTripsByScheduleAndDate(c *gin.Context) {
	scheduleID, err := models.ParseScheduleID(c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	trips, err := h.trips.ListBySchedule(scheduleID, c.Param("sub"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trips)
}

// GetTripByID retrieves a trip by trip ID
// GET /trip-service/trips/:key
func (h *TripHandler) GetTripByID(c *gin.Context) {
	tripID, err := models.ParseTripID(c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	trip, err := h.trips.GetTrip(tripID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// UpdateBookingStatus changes a trip's booking status
// PATCH /trip-service/trips/:key/booking-status
// PATCH /trip-service/trips/:key
func (h *TripHandler) UpdateBookingStatus(c *gin.Context) {
	tripID, err := models.ParseTripID(c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindingError(err))
		return
	}

	if err := h.trips.UpdateBookingStatus(tripID, req.BookingStatus); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Booking status updated successfully"})
}

// ConfirmSeat moves a seat from available to confirmed
// PATCH /trip-service/trips/:key/confirm-seat
func (h *TripHandler) ConfirmSeat(c *gin.Context) {
	tripID, err := models.ParseTripID(c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req models.ConfirmSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindingError(err))
		return
	}

	trip, err := h.trips.ConfirmSeat(tripID, req.SeatNumber)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, TripResponse{
		Message: "Seat confirmed successfully",
		Trip:    trip,
	})
}

// DeleteTrip removes a trip
// DELETE /trip-service/trips/:key
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	tripID, err := models.ParseTripID(c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if err := h.trips.DeleteTrip(tripID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Trip deleted successfully"})
}
