package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

// IntArray is a custom type for handling INTEGER[] arrays in PostgreSQL
type IntArray []int

// Value implements the driver.Valuer interface. A nil array is stored as an empty array
// so seat columns never hold NULL.
func (a IntArray) Value() (driver.Value, error) {
	values := make(pq.Int64Array, len(a))
	for i, v := range a {
		values[i] = int64(v)
	}
	return values.Value()
}

// Scan implements the sql.Scanner interface
func (a *IntArray) Scan(src interface{}) error {
	if src == nil {
		*a = IntArray{}
		return nil
	}
	var values pq.Int64Array
	if err := values.Scan(src); err != nil {
		return err
	}
	out := make(IntArray, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	*a = out
	return nil
}

// SeatRange returns the seat numbers 1..capacity.
func SeatRange(capacity int) IntArray {
	if capacity < 0 {
		capacity = 0
	}
	seats := make(IntArray, capacity)
	for i := range seats {
		seats[i] = i + 1
	}
	return seats
}
