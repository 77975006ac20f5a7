package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/smarttransit/trip-service/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

const tripColumns = `
	id, trip_id, trip_number, to_char(trip_date, 'YYYY-MM-DD') AS trip_date, booking_status,
	route_number, route_name, travel_distance, travel_duration, start_location, end_location,
	schedule_id, departure_time, arrival_time,
	permit_number, vehicle_number, bus_type, price_per_seat, music, ac,
	number_capacity, available_seats, confirmed_seats, created_at, updated_at`

// TripRepository handles database operations for the trips table
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts a new trip. A second insert with the same trip_id is rejected by the
// trips_trip_id_key unique index and reported as models.ErrDuplicateTripID.
func (r *TripRepository) Create(trip *models.Trip) error {
	query := `
		INSERT INTO trips (
			trip_id, trip_number, trip_date, booking_status,
			route_number, route_name, travel_distance, travel_duration, start_location, end_location,
			schedule_id, departure_time, arrival_time,
			permit_number, vehicle_number, bus_type, price_per_seat, music, ac,
			number_capacity, available_seats, confirmed_seats
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		trip.TripID, trip.TripNumber, trip.TripDate, trip.BookingStatus,
		trip.RouteNumber, trip.RouteName, trip.TravelDistance, trip.TravelDuration, trip.StartLocation, trip.EndLocation,
		trip.ScheduleID, trip.DepartureTime, trip.ArrivalTime,
		trip.PermitNumber, trip.VehicleNumber, trip.BusType, trip.PricePerSeat, trip.Music, trip.AC,
		trip.NumberCapacity, trip.AvailableSeats, trip.ConfirmedSeats,
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateTripID
		}
		return &models.StorageError{Op: "create trip", Err: err}
	}

	return nil
}

// ExistsByTripID checks whether a trip with the given trip ID exists
func (r *TripRepository) ExistsByTripID(tripID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM trips WHERE trip_id = $1)`, tripID).Scan(&exists)
	if err != nil {
		return false, &models.StorageError{Op: "check trip", Err: err}
	}
	return exists, nil
}

// GetByTripID retrieves a trip by its trip ID
func (r *TripRepository) GetByTripID(tripID int64) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE trip_id = $1`

	trip, err := r.scanTrip(r.db.QueryRow(query, tripID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTripNotFound
		}
		return nil, &models.StorageError{Op: "get trip", Err: err}
	}

	return trip, nil
}

// FindByRouteAndDate retrieves trips between two locations on a date. Amenity filters
// are only applied when supplied.
func (r *TripRepository) FindByRouteAndDate(startLocation, endLocation, tripDate string, filters models.TripFilters) ([]models.Trip, error) {
	conditions := []string{"start_location = $1", "end_location = $2", "trip_date = $3"}
	args := []interface{}{startLocation, endLocation, tripDate}

	if filters.Music != nil {
		args = append(args, *filters.Music)
		conditions = append(conditions, fmt.Sprintf("music = $%d", len(args)))
	}
	if filters.AC != nil {
		args = append(args, *filters.AC)
		conditions = append(conditions, fmt.Sprintf("ac = $%d", len(args)))
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY departure_time, trip_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, &models.StorageError{Op: "find trips by route", Err: err}
	}
	defer rows.Close()

	trips, err := r.scanTrips(rows)
	if err != nil {
		return nil, &models.StorageError{Op: "find trips by route", Err: err}
	}
	return trips, nil
}

// FindByScheduleAndDate retrieves trips for a schedule on a date
func (r *TripRepository) FindByScheduleAndDate(scheduleID int64, tripDate string) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE schedule_id = $1 AND trip_date = $2
		ORDER BY departure_time, trip_id`

	rows, err := r.db.Query(query, scheduleID, tripDate)
	if err != nil {
		return nil, &models.StorageError{Op: "find trips by schedule", Err: err}
	}
	defer rows.Close()

	trips, err := r.scanTrips(rows)
	if err != nil {
		return nil, &models.StorageError{Op: "find trips by schedule", Err: err}
	}
	return trips, nil
}

// UpdateBookingStatus overwrites the booking status of a trip
func (r *TripRepository) UpdateBookingStatus(tripID int64, status models.BookingStatus) error {
	query := `
		UPDATE trips
		SET booking_status = $2, updated_at = NOW()
		WHERE trip_id = $1
	`

	result, err := r.db.Exec(query, tripID, status)
	if err != nil {
		return &models.StorageError{Op: "update booking status", Err: err}
	}

	return expectOneRow(result, "update booking status")
}

// ConfirmSeat moves a seat from available_seats to confirmed_seats in a single statement.
// The update only matches while the seat is still available, so two confirmations of the
// same seat cannot both succeed.
func (r *TripRepository) ConfirmSeat(tripID int64, seat int) (*models.Trip, error) {
	query := `
		UPDATE trips
		SET available_seats = array_remove(available_seats, $2::int),
			confirmed_seats = array_append(confirmed_seats, $2::int),
			updated_at = NOW()
		WHERE trip_id = $1 AND $2::int = ANY(available_seats)
		RETURNING ` + tripColumns

	trip, err := r.scanTrip(r.db.QueryRow(query, tripID, seat))
	if err == nil {
		return trip, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, &models.StorageError{Op: "confirm seat", Err: err}
	}

	exists, err := r.ExistsByTripID(tripID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrTripNotFound
	}
	return nil, models.ErrSeatUnavailable
}

// Delete removes a trip by its trip ID
func (r *TripRepository) Delete(tripID int64) error {
	result, err := r.db.Exec(`DELETE FROM trips WHERE trip_id = $1`, tripID)
	if err != nil {
		return &models.StorageError{Op: "delete trip", Err: err}
	}

	return expectOneRow(result, "delete trip")
}

func expectOneRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: op, Err: err}
	}
	if rows == 0 {
		return models.ErrTripNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// scanTrip scans a single trip
func (r *TripRepository) scanTrip(row scanner) (*models.Trip, error) {
	trip := &models.Trip{}

	err := row.Scan(
		&trip.ID, &trip.TripID, &trip.TripNumber, &trip.TripDate, &trip.BookingStatus,
		&trip.RouteNumber, &trip.RouteName, &trip.TravelDistance, &trip.TravelDuration, &trip.StartLocation, &trip.EndLocation,
		&trip.ScheduleID, &trip.DepartureTime, &trip.ArrivalTime,
		&trip.PermitNumber, &trip.VehicleNumber, &trip.BusType, &trip.PricePerSeat, &trip.Music, &trip.AC,
		&trip.NumberCapacity, &trip.AvailableSeats, &trip.ConfirmedSeats, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return trip, nil
}

// scanTrips scans multiple trips from rows
func (r *TripRepository) scanTrips(rows *sql.Rows) ([]models.Trip, error) {
	trips := []models.Trip{}

	for rows.Next() {
		trip, err := r.scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}

	return trips, rows.Err()
}

// scanner interface for QueryRow and Rows
type scanner interface {
	Scan(dest ...interface{}) error
}
