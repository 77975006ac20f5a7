package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BookingStatus represents the booking state of a trip
type BookingStatus string

const (
	BookingStatusAvailable BookingStatus = "Available"
	BookingStatusSoldOut   BookingStatus = "Sold Out"
	BookingStatusPending   BookingStatus = "Pending"
)

// TripDateLayout is the calendar-day layout trips are stored and served in
const TripDateLayout = "2006-01-02"

var tripDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValid checks the status against the fixed set of booking states
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusAvailable, BookingStatusSoldOut, BookingStatusPending:
		return true
	}
	return false
}

// Trip is a bus trip with route, schedule and permit details captured at creation time
type Trip struct {
	ID             int64         `json:"-" db:"id"`
	TripID         int64         `json:"tripId" db:"trip_id"`
	TripNumber     string        `json:"tripNumber" db:"trip_number"`
	TripDate       string        `json:"tripDate" db:"trip_date"`
	BookingStatus  BookingStatus `json:"bookingStatus" db:"booking_status"`
	RouteNumber    string        `json:"routeNumber" db:"route_number"`
	RouteName      string        `json:"routeName" db:"route_name"`
	TravelDistance string        `json:"travelDistance" db:"travel_distance"`
	TravelDuration string        `json:"travelDuration" db:"travel_duration"`
	StartLocation  string        `json:"startLocation" db:"start_location"`
	EndLocation    string        `json:"endLocation" db:"end_location"`
	ScheduleID     int64         `json:"scheduleId" db:"schedule_id"`
	DepartureTime  string        `json:"departureTime" db:"departure_time"`
	ArrivalTime    string        `json:"arrivalTime" db:"arrival_time"`
	PermitNumber   string        `json:"permitNumber" db:"permit_number"`
	VehicleNumber  string        `json:"vehicleNumber" db:"vehicle_number"`
	BusType        string        `json:"busType" db:"bus_type"`
	PricePerSeat   float64       `json:"pricePerSeat" db:"price_per_seat"`
	Music          bool          `json:"music" db:"music"`
	AC             bool          `json:"ac" db:"ac"`
	NumberCapacity int           `json:"numberCapacity" db:"number_capacity"`
	AvailableSeats IntArray      `json:"availableSeats" db:"available_seats"`
	ConfirmedSeats IntArray      `json:"confirmedSeats" db:"confirmed_seats"`
	CreatedAt      time.Time     `json:"-" db:"created_at"`
	UpdatedAt      time.Time     `json:"-" db:"updated_at"`
}

// CreateTripRequest represents the request to create a trip
type CreateTripRequest struct {
	TripID        *int64        `json:"tripId" binding:"required"`
	TripNumber    string        `json:"tripNumber" binding:"required"`
	TripDate      string        `json:"tripDate" binding:"required"`
	BookingStatus BookingStatus `json:"bookingStatus" binding:"required"`
	RouteNumber   string        `json:"routeNumber" binding:"required"`
	ScheduleID    *int64        `json:"scheduleId" binding:"required"`
	PermitNumber  string        `json:"permitNumber" binding:"required"`
}

// UpdateBookingStatusRequest represents the request to change a trip's booking status
type UpdateBookingStatusRequest struct {
	BookingStatus BookingStatus `json:"bookingStatus" binding:"required"`
}

// ConfirmSeatRequest represents the request to confirm one seat on a trip
type ConfirmSeatRequest struct {
	SeatNumber int `json:"seatNumber" binding:"required"`
}

// TripFilters holds optional amenity filters. A nil field is not applied.
type TripFilters struct {
	Music *bool
	AC    *bool
}

// Validate checks required fields, the date format and the booking status.
// It returns the normalized trip date.
func (r *CreateTripRequest) Validate() (string, error) {
	if r.TripID == nil {
		return "", NewValidationError("tripId", "is required")
	}
	if strings.TrimSpace(r.TripNumber) == "" {
		return "", NewValidationError("tripNumber", "is required")
	}
	if strings.TrimSpace(r.TripDate) == "" {
		return "", NewValidationError("tripDate", "is required")
	}
	if r.BookingStatus == "" {
		return "", NewValidationError("bookingStatus", "is required")
	}
	if strings.TrimSpace(r.RouteNumber) == "" {
		return "", NewValidationError("routeNumber", "is required")
	}
	if r.ScheduleID == nil {
		return "", NewValidationError("scheduleId", "is required")
	}
	if strings.TrimSpace(r.PermitNumber) == "" {
		return "", NewValidationError("permitNumber", "is required")
	}

	date, err := ParseTripDate(r.TripDate)
	if err != nil {
		return "", err
	}

	if !r.BookingStatus.IsValid() {
		return "", NewValidationError("bookingStatus", "must be one of Available, Sold Out, Pending")
	}

	return date, nil
}

// ParseTripDate validates a strict YYYY-MM-DD calendar day and returns it normalized.
func ParseTripDate(value string) (string, error) {
	if !tripDateRegex.MatchString(value) {
		return "", NewValidationError("tripDate", "must be in YYYY-MM-DD format")
	}
	day, err := time.Parse(TripDateLayout, value)
	if err != nil {
		return "", NewValidationError("tripDate", "is not a valid calendar date")
	}
	return day.Format(TripDateLayout), nil
}

// ParseTripID parses a trip ID path parameter
func ParseTripID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, NewValidationError("tripId", "must be an integer")
	}
	return id, nil
}

// ParseScheduleID parses a schedule ID path parameter
func ParseScheduleID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, NewValidationError("scheduleId", "must be an integer")
	}
	return id, nil
}

// ParseFilterFlag parses an optional boolean query flag. An empty value means "not supplied".
func ParseFilterFlag(name, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	flag, err := strconv.ParseBool(value)
	if err != nil {
		return nil, NewValidationError(name, "must be true or false")
	}
	return &flag, nil
}

// SeatSummary returns available and confirmed seat counts
func (t *Trip) SeatSummary() (available, confirmed int) {
	return len(t.AvailableSeats), len(t.ConfirmedSeats)
}
