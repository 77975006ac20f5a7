package database

import "fmt"

// schemaStatements create the trips table and its indexes. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id              BIGSERIAL PRIMARY KEY,
		trip_id         BIGINT NOT NULL,
		trip_number     TEXT NOT NULL,
		trip_date       DATE NOT NULL,
		booking_status  TEXT NOT NULL,
		route_number    TEXT NOT NULL,
		route_name      TEXT NOT NULL DEFAULT '',
		travel_distance TEXT NOT NULL DEFAULT '',
		travel_duration TEXT NOT NULL DEFAULT '',
		start_location  TEXT NOT NULL DEFAULT '',
		end_location    TEXT NOT NULL DEFAULT '',
		schedule_id     BIGINT NOT NULL,
		departure_time  TEXT NOT NULL DEFAULT '',
		arrival_time    TEXT NOT NULL DEFAULT '',
		permit_number   TEXT NOT NULL,
		vehicle_number  TEXT NOT NULL DEFAULT '',
		bus_type        TEXT NOT NULL DEFAULT '',
		price_per_seat  DOUBLE PRECISION NOT NULL DEFAULT 0,
		music           BOOLEAN NOT NULL DEFAULT FALSE,
		ac              BOOLEAN NOT NULL DEFAULT FALSE,
		number_capacity INTEGER NOT NULL DEFAULT 0,
		available_seats INTEGER[] NOT NULL DEFAULT '{}',
		confirmed_seats INTEGER[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS trips_trip_id_key ON trips (trip_id)`,
	`CREATE INDEX IF NOT EXISTS trips_route_date_idx ON trips (start_location, end_location, trip_date)`,
	`CREATE INDEX IF NOT EXISTS trips_schedule_date_idx ON trips (schedule_id, trip_date)`,
}

// EnsureSchema creates the trips table and indexes if they do not exist
func EnsureSchema(db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
