package ingest

import (
	"strings"
	"sync"
	"time"

	"reservation-backend/internal/reservation/domain"
	"reservation-backend/internal/reservation/extract"
)

// Batch collects the records of one ingestion cycle. Message bodies
// parse concurrently, so every admit call funnels through one mutex;
// duplicate detection and reply matching depend on admits never
// interleaving.
//
// Records are append-only. The only mutation after insert is the
// HasReply flag, and that only transitions to true.
type Batch struct {
	mu      sync.Mutex
	records []*domain.ReservationRecord
}

// NewBatch returns an empty batch. Each ingestion cycle gets a fresh
// one; nothing carries over between cycles except what persistence
// retains.
func NewBatch() *Batch {
	return &Batch{}
}

// AdmitOriginal appends a new request record unless one with the same
// requester email and effective-date calendar day is already present.
// Duplicates are dropped, not merged.
func (b *Batch) AdmitOriginal(rec *domain.ReservationRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasDuplicate(rec) {
		return false
	}
	rec.Kind = domain.KindOriginal
	rec.HasReply = false
	b.records = append(b.records, rec)
	return true
}

// AdmitReply marks the first request record matching the reply's
// extracted fields as answered. Name, party size and the exact
// reservation instant must all agree, and both sides must actually
// carry a reservation time. An unmatched reply is dropped; replies
// never become records.
func (b *Batch) AdmitReply(fields extract.Fields) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rec := range b.records {
		if !strings.Contains(rec.Subject, extract.TriggerPhrase) {
			continue
		}
		if rec.RequesterName != fields.Name || rec.PartySize != fields.PartySize {
			continue
		}
		if rec.ReservationAt == nil || fields.ReservationAt == nil {
			continue
		}
		if !rec.ReservationAt.Equal(*fields.ReservationAt) {
			continue
		}
		rec.HasReply = true
		return true
	}
	return false
}

// AdmitOther appends a record for a message that is neither a request
// nor a reply, with the person, party and date fields forced to
// unknown. Deduplicated on the same key as originals.
func (b *Batch) AdmitOther(rec *domain.ReservationRecord) bool {
	rec.RequesterName = domain.Unknown
	rec.PartySize = domain.Unknown
	rec.ReservationAt = nil

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasDuplicate(rec) {
		return false
	}
	rec.Kind = domain.KindOther
	rec.HasReply = false
	b.records = append(b.records, rec)
	return true
}

// Records returns a snapshot of the batch in insertion order.
func (b *Batch) Records() []*domain.ReservationRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*domain.ReservationRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Len reports how many records the batch currently holds.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// hasDuplicate reports whether a record with the same requester email
// and effective-date calendar day already exists. Caller holds b.mu.
func (b *Batch) hasDuplicate(rec *domain.ReservationRecord) bool {
	day := calendarDay(rec.EffectiveDate())
	for _, existing := range b.records {
		if existing.RequesterEmail == rec.RequesterEmail && calendarDay(existing.EffectiveDate()) == day {
			return true
		}
	}
	return false
}

func calendarDay(t time.Time) string {
	return t.Format("2006-01-02")
}
