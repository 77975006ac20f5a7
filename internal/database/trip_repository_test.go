package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/smarttransit/trip-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tripRowColumns = []string{
	"id", "trip_id", "trip_number", "trip_date", "booking_status",
	"route_number", "route_name", "travel_distance", "travel_duration", "start_location", "end_location",
	"schedule_id", "departure_time", "arrival_time",
	"permit_number", "vehicle_number", "bus_type", "price_per_seat", "music", "ac",
	"number_capacity", "available_seats", "confirmed_seats", "created_at", "updated_at",
}

func addTripRow(rows *sqlmock.Rows, tripID int64, available, confirmed string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		tripID, tripID, "T-101", "2024-05-01", "Available",
		"R1", "Colombo - Kandy", "115 km", "3h", "Colombo", "Kandy",
		int64(5), "08:00", "11:00",
		"P9", "NB-1234", "Luxury", 1500.0, true, false,
		4, []byte(available), []byte(confirmed), now, now,
	)
}

func newTestTrip() *models.Trip {
	return &models.Trip{
		TripID:         101,
		TripNumber:     "T-101",
		TripDate:       "2024-05-01",
		BookingStatus:  models.BookingStatusAvailable,
		RouteNumber:    "R1",
		RouteName:      "Colombo - Kandy",
		StartLocation:  "Colombo",
		EndLocation:    "Kandy",
		ScheduleID:     5,
		PermitNumber:   "P9",
		NumberCapacity: 4,
		AvailableSeats: models.SeatRange(4),
		ConfirmedSeats: models.IntArray{},
	}
}

func TestTripRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		trip := newTestTrip()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO trips`).
			WithArgs(
				int64(101), "T-101", "2024-05-01", sqlmock.AnyArg(),
				"R1", "Colombo - Kandy", "", "", "Colombo", "Kandy",
				int64(5), "", "",
				"P9", "", "", 0.0, false, false,
				4, "{1,2,3,4}", "{}",
			).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

		err := repo.Create(trip)
		require.NoError(t, err)
		assert.Equal(t, int64(7), trip.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Keeps Sub-Cent Price", func(t *testing.T) {
		trip := newTestTrip()
		trip.PricePerSeat = 1234.567
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO trips`).
			WithArgs(
				int64(101), "T-101", "2024-05-01", sqlmock.AnyArg(),
				"R1", "Colombo - Kandy", "", "", "Colombo", "Kandy",
				int64(5), "", "",
				"P9", "", "", 1234.567, false, false,
				4, "{1,2,3,4}", "{}",
			).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(8), now, now))

		require.NoError(t, repo.Create(trip))
		assert.Equal(t, 1234.567, trip.PricePerSeat)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Trip ID", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO trips`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"trips_trip_id_key\""})

		err := repo.Create(newTestTrip())
		assert.ErrorIs(t, err, models.ErrDuplicateTripID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO trips`).
			WillReturnError(fmt.Errorf("connection reset"))

		err := repo.Create(newTestTrip())
		var storageErr *models.StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Contains(t, err.Error(), "connection reset")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepositoryGetByTripID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE trip_id = \$1`).
			WithArgs(int64(101)).
			WillReturnRows(addTripRow(sqlmock.NewRows(tripRowColumns), 101, "{1,2,4}", "{3}"))

		trip, err := repo.GetByTripID(101)
		require.NoError(t, err)
		assert.Equal(t, int64(101), trip.TripID)
		assert.Equal(t, "2024-05-01", trip.TripDate)
		assert.Equal(t, models.BookingStatusAvailable, trip.BookingStatus)
		assert.Equal(t, models.IntArray{1, 2, 4}, trip.AvailableSeats)
		assert.Equal(t, models.IntArray{3}, trip.ConfirmedSeats)
		assert.True(t, trip.Music)
		assert.False(t, trip.AC)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Price Read Back Unrounded", func(t *testing.T) {
		now := time.Now()
		row := sqlmock.NewRows(tripRowColumns).AddRow(
			int64(102), int64(102), "T-102", "2024-05-01", "Available",
			"R1", "Colombo - Kandy", "115 km", "3h", "Colombo", "Kandy",
			int64(5), "08:00", "11:00",
			"P9", "NB-1234", "Luxury", 1234.567, true, false,
			4, []byte("{1,2,3,4}"), []byte("{}"), now, now,
		)
		mock.ExpectQuery(`SELECT (.+) price_per_seat, music, ac, (.+) FROM trips WHERE trip_id = \$1`).
			WithArgs(int64(102)).
			WillReturnRows(row)

		trip, err := repo.GetByTripID(102)
		require.NoError(t, err)
		assert.Equal(t, 1234.567, trip.PricePerSeat)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trip Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE trip_id = \$1`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		trip, err := repo.GetByTripID(404)
		assert.Nil(t, trip)
		assert.ErrorIs(t, err, models.ErrTripNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepositoryExistsByTripID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM trips WHERE trip_id = \$1\)`).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByTripID(101)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepositoryFindByRouteAndDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	t.Run("Without Filters", func(t *testing.T) {
		rows := sqlmock.NewRows(tripRowColumns)
		addTripRow(rows, 101, "{1,2,3,4}", "{}")
		addTripRow(rows, 102, "{1,2,3,4}", "{}")

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE start_location = \$1 AND end_location = \$2 AND trip_date = \$3 ORDER BY`).
			WithArgs("Colombo", "Kandy", "2024-05-01").
			WillReturnRows(rows)

		trips, err := repo.FindByRouteAndDate("Colombo", "Kandy", "2024-05-01", models.TripFilters{})
		require.NoError(t, err)
		require.Len(t, trips, 2)
		assert.Equal(t, int64(102), trips[1].TripID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("With Music And AC Filters", func(t *testing.T) {
		music, ac := true, false

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE start_location = \$1 AND end_location = \$2 AND trip_date = \$3 AND music = \$4 AND ac = \$5`).
			WithArgs("Colombo", "Kandy", "2024-05-01", true, false).
			WillReturnRows(sqlmock.NewRows(tripRowColumns))

		trips, err := repo.FindByRouteAndDate("Colombo", "Kandy", "2024-05-01", models.TripFilters{Music: &music, AC: &ac})
		require.NoError(t, err)
		assert.NotNil(t, trips)
		assert.Empty(t, trips)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Only AC Filter", func(t *testing.T) {
		ac := true

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE start_location = \$1 AND end_location = \$2 AND trip_date = \$3 AND ac = \$4`).
			WithArgs("Colombo", "Kandy", "2024-05-01", true).
			WillReturnRows(sqlmock.NewRows(tripRowColumns))

		_, err := repo.FindByRouteAndDate("Colombo", "Kandy", "2024-05-01", models.TripFilters{AC: &ac})
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepositoryFindByScheduleAndDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	mock.ExpectQuery(`SELECT (.+) FROM trips\s+WHERE schedule_id = \$1 AND trip_date = \$2`).
		WithArgs(int64(5), "2024-05-01").
		WillReturnRows(addTripRow(sqlmock.NewRows(tripRowColumns), 101, "{1,2,3,4}", "{}"))

	trips, err := repo.FindByScheduleAndDate(5, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, int64(5), trips[0].ScheduleID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepositoryUpdateBookingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE trips\s+SET booking_status = \$2`).
			WithArgs(int64(101), "Sold Out").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateBookingStatus(101, models.BookingStatusSoldOut)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trip Not Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE trips\s+SET booking_status = \$2`).
			WithArgs(int64(404), "Pending").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateBookingStatus(404, models.BookingStatusPending)
		assert.ErrorIs(t, err, models.ErrTripNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepositoryConfirmSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE trips\s+SET available_seats = array_remove`).
			WithArgs(int64(101), 3).
			WillReturnRows(addTripRow(sqlmock.NewRows(tripRowColumns), 101, "{1,2,4}", "{3}"))

		trip, err := repo.ConfirmSeat(101, 3)
		require.NoError(t, err)
		assert.Equal(t, models.IntArray{1, 2, 4}, trip.AvailableSeats)
		assert.Equal(t, models.IntArray{3}, trip.ConfirmedSeats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Seat Unavailable", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE trips\s+SET available_seats = array_remove`).
			WithArgs(int64(101), 3).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(101)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		trip, err := repo.ConfirmSeat(101, 3)
		assert.Nil(t, trip)
		assert.ErrorIs(t, err, models.ErrSeatUnavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trip Not Found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE trips\s+SET available_seats = array_remove`).
			WithArgs(int64(404), 1).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.ConfirmSeat(404, 1)
		assert.ErrorIs(t, err, models.ErrTripNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepositoryDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTripRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM trips WHERE trip_id = \$1`).
			WithArgs(int64(101)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(101))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trip Not Found", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM trips WHERE trip_id = \$1`).
			WithArgs(int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(404), models.ErrTripNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS trips (.+) price_per_seat DOUBLE PRECISION NOT NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS trips_trip_id_key ON trips \(trip_id\)`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS trips_route_date_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS trips_schedule_date_idx`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(&mockDatabase{db: db}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Mock database implementation for testing
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
