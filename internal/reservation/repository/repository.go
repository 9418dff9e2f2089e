package repository

import (
	"errors"
	"time"

	"reservation-backend/internal/reservation/domain"
)

// ErrNotFound is returned when a status update matches no stored record.
var ErrNotFound = errors.New("record not found")

// ReservationRepository persists finalized reservation records. It is
// the system of record once a batch has been handed off.
type ReservationRepository interface {
	// Save inserts a record unless one with the same requester
	// email, effective-date calendar day and party size already
	// exists. The check is independent of the in-batch dedup.
	Save(rec *domain.ReservationRecord) error

	// UpdateStatus sets the answered flag on the record matching
	// (name, requester email, calendar day). Returns ErrNotFound
	// when no row matches.
	UpdateStatus(name, email string, day time.Time, status bool) (*domain.ReservationRecord, error)
}
