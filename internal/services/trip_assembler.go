package services

import (
	"github.com/smarttransit/trip-service/internal/models"
	"github.com/smarttransit/trip-service/pkg/upstream"
)

// AssembleTrip builds a trip from a validated request and the upstream payloads.
// Route, schedule and permit fields are copied as-is; they are a snapshot and are never
// refreshed from the upstream services afterwards. Every seat starts out available.
func AssembleTrip(req *models.CreateTripRequest, tripDate string, e *upstream.Enrichment) *models.Trip {
	capacity := e.Permit.NumberCapacity
	if capacity < 0 {
		capacity = 0
	}

	return &models.Trip{
		TripID:        *req.TripID,
		TripNumber:    req.TripNumber,
		TripDate:      tripDate,
		BookingStatus: req.BookingStatus,
		RouteNumber:   req.RouteNumber,
		ScheduleID:    *req.ScheduleID,
		PermitNumber:  req.PermitNumber,

		RouteName:      e.Route.RouteName,
		TravelDistance: e.Route.TravelDistance,
		TravelDuration: e.Route.TravelDuration,
		StartLocation:  e.Route.StartLocation,
		EndLocation:    e.Route.EndLocation,

		DepartureTime: e.Schedule.DepartureTime,
		ArrivalTime:   e.Schedule.ArrivalTime,

		VehicleNumber:  e.Permit.VehicleNumber,
		BusType:        e.Permit.BusType,
		PricePerSeat:   e.Permit.PricePerSeat,
		Music:          e.Permit.Music,
		AC:             e.Permit.AC,
		NumberCapacity: capacity,

		AvailableSeats: models.SeatRange(capacity),
		ConfirmedSeats: models.IntArray{},
	}
}
