package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/trip-service/internal/metrics"
	"github.com/smarttransit/trip-service/internal/models"
	"github.com/smarttransit/trip-service/pkg/upstream"
)

// TripStore persists and queries trips
type TripStore interface {
	Create(trip *models.Trip) error
	ExistsByTripID(tripID int64) (bool, error)
	GetByTripID(tripID int64) (*models.Trip, error)
	FindByRouteAndDate(startLocation, endLocation, tripDate string, filters models.TripFilters) ([]models.Trip, error)
	FindByScheduleAndDate(scheduleID int64, tripDate string) ([]models.Trip, error)
	UpdateBookingStatus(tripID int64, status models.BookingStatus) error
	ConfirmSeat(tripID int64, seat int) (*models.Trip, error)
	Delete(tripID int64) error
}

// Enricher looks up the route, schedule and permit a new trip refers to
type Enricher interface {
	Fetch(ctx context.Context, routeNumber string, scheduleID int64, permitNumber string) (*upstream.Enrichment, error)
}

// TripService handles business logic for trips
type TripService struct {
	store    TripStore
	enricher Enricher
	logger   *logrus.Logger
}

// NewTripService creates a new trip service
func NewTripService(store TripStore, enricher Enricher, logger *logrus.Logger) *TripService {
	return &TripService{
		store:    store,
		enricher: enricher,
		logger:   logger,
	}
}

// CreateTrip validates the request, rejects known trip IDs, enriches the trip from the
// route, schedule and permit services and stores it. Nothing is written unless every
// lookup succeeds.
func (s *TripService) CreateTrip(ctx context.Context, req *models.CreateTripRequest) (*models.Trip, error) {
	tripDate, err := req.Validate()
	if err != nil {
		metrics.TripCreateFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	// A concurrent insert of the same ID is still rejected by trips_trip_id_key.
	exists, err := s.store.ExistsByTripID(*req.TripID)
	if err != nil {
		metrics.TripCreateFailures.WithLabelValues("storage").Inc()
		return nil, err
	}
	if exists {
		metrics.TripCreateFailures.WithLabelValues("duplicate").Inc()
		return nil, fmt.Errorf("%w: %d", models.ErrDuplicateTripID, *req.TripID)
	}

	enrichment, err := s.enricher.Fetch(ctx, req.RouteNumber, *req.ScheduleID, req.PermitNumber)
	if err != nil {
		var notFound *upstream.NotFoundError
		if errors.As(err, &notFound) {
			metrics.TripCreateFailures.WithLabelValues("upstream_not_found").Inc()
		} else {
			metrics.TripCreateFailures.WithLabelValues("upstream_unavailable").Inc()
		}
		s.logger.WithFields(logrus.Fields{
			"trip_id":       *req.TripID,
			"route_number":  req.RouteNumber,
			"schedule_id":   *req.ScheduleID,
			"permit_number": req.PermitNumber,
		}).WithError(err).Warn("Trip enrichment failed")
		return nil, err
	}

	trip := AssembleTrip(req, tripDate, enrichment)

	if err := s.store.Create(trip); err != nil {
		if errors.Is(err, models.ErrDuplicateTripID) {
			metrics.TripCreateFailures.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%w: %d", err, trip.TripID)
		}
		metrics.TripCreateFailures.WithLabelValues("storage").Inc()
		return nil, err
	}

	metrics.TripsCreated.Inc()
	s.logger.WithFields(logrus.Fields{
		"trip_id":         trip.TripID,
		"trip_date":       trip.TripDate,
		"number_capacity": trip.NumberCapacity,
	}).Info("Trip created")

	return trip, nil
}

// GetTrip retrieves a trip by trip ID
func (s *TripService) GetTrip(tripID int64) (*models.Trip, error) {
	return s.store.GetByTripID(tripID)
}

// ListByRoute lists trips between two locations on a date
func (s *TripService) ListByRoute(startLocation, endLocation, tripDate string, filters models.TripFilters) ([]models.Trip, error) {
	date, err := models.ParseTripDate(tripDate)
	if err != nil {
		return nil, err
	}
	return s.store.FindByRouteAndDate(startLocation, endLocation, date, filters)
}

// ListBySchedule lists trips of a schedule on a date
func (s *TripService) ListBySchedule(scheduleID int64, tripDate string) ([]models.Trip, error) {
	date, err := models.ParseTripDate(tripDate)
	if err != nil {
		return nil, err
	}
	return s.store.FindByScheduleAndDate(scheduleID, date)
}

// UpdateBookingStatus sets a trip's booking status. Any status may replace any other.
func (s *TripService) UpdateBookingStatus(tripID int64, status models.BookingStatus) error {
	if !status.IsValid() {
		return models.NewValidationError("bookingStatus", "must be one of Available, Sold Out, Pending")
	}

	if err := s.store.UpdateBookingStatus(tripID, status); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id":        tripID,
		"booking_status": status,
	}).Info("Booking status updated")
	return nil
}

// ConfirmSeat moves one seat from the trip's available seats to its confirmed seats
func (s *TripService) ConfirmSeat(tripID int64, seat int) (*models.Trip, error) {
	if seat < 1 {
		return nil, models.NewValidationError("seatNumber", "must be a positive seat number")
	}

	trip, err := s.store.ConfirmSeat(tripID, seat)
	if err != nil {
		return nil, err
	}

	metrics.SeatsConfirmed.Inc()
	available, confirmed := trip.SeatSummary()
	s.logger.WithFields(logrus.Fields{
		"trip_id":   tripID,
		"seat":      seat,
		"available": available,
		"confirmed": confirmed,
	}).Info("Seat confirmed")

	return trip, nil
}

// DeleteTrip removes a trip by trip ID
func (s *TripService) DeleteTrip(tripID int64) error {
	if err := s.store.Delete(tripID); err != nil {
		return err
	}

	s.logger.WithField("trip_id", tripID).Info("Trip deleted")
	return nil
}
