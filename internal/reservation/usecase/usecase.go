package usecase

import (
	"context"
	"time"

	"reservation-backend/internal/reservation/domain"
)

// MailSession is one authenticated mailbox connection. Search runs
// once, Fetch consumes its result exactly once, and Close must be
// called on every exit path.
type MailSession interface {
	Search(since time.Time) ([]uint32, error)
	Fetch(ids []uint32) <-chan domain.RawMessage
	Close() error
}

// DialFunc opens a fresh mailbox session for one ingestion cycle.
type DialFunc func(ctx context.Context) (MailSession, error)

// ReservationUsecase defines reservation business logic operations
type ReservationUsecase interface {
	// Refresh runs one full ingestion cycle synchronously. A hard
	// connection or search error aborts the cycle and leaves the
	// previously published records unchanged.
	Refresh(ctx context.Context) error

	// ListRecords returns the published batch, descending by the
	// chosen sort key. "reservationDate" sorts by the reservation
	// time, falling back to the received time when absent; any
	// other value sorts by received time.
	ListRecords(sortBy string) []*domain.ReservationRecord

	// SetStatus updates the answered flag on the stored record
	// matching (name, requester email, calendar day) and mirrors
	// the change into the published batch.
	SetStatus(name, email string, day time.Time, status bool) (*domain.ReservationRecord, error)

	// SearchRecords fuzzy-matches the published batch against a
	// free-text query.
	SearchRecords(query string) []*domain.ReservationRecord
}
