package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"reservation-backend/internal/reservation/domain"
	"reservation-backend/internal/reservation/extract"
	"reservation-backend/internal/reservation/ingest"
	"reservation-backend/internal/reservation/repository"
	"reservation-backend/pkg/fuzzy"
)

// reservationUsecase implements ReservationUsecase
type reservationUsecase struct {
	repo               repository.ReservationRepository
	dial               DialFunc
	searchWindowMonths int
	retainOther        bool

	// published is the batch of the last successful cycle, served
	// to the API. Replaced wholesale at the end of a cycle.
	published   []*domain.ReservationRecord
	publishedMu sync.RWMutex

	// refreshMu serializes cycles; a manual refresh racing the
	// startup run would open two mailbox sessions.
	refreshMu sync.Mutex
}

// NewReservationUsecase creates a new instance of reservationUsecase
func NewReservationUsecase(repo repository.ReservationRepository, dial DialFunc, searchWindowMonths int, retainOther bool) ReservationUsecase {
	return &reservationUsecase{
		repo:               repo,
		dial:               dial,
		searchWindowMonths: searchWindowMonths,
		retainOther:        retainOther,
	}
}

func (u *reservationUsecase) Refresh(ctx context.Context) error {
	u.refreshMu.Lock()
	defer u.refreshMu.Unlock()

	session, err := u.dial(ctx)
	if err != nil {
		log.Printf("[Ingest] connection failed: %v", err)
		return fmt.Errorf("connecting to mailbox: %w", err)
	}
	defer session.Close()

	since := time.Now().AddDate(0, -u.searchWindowMonths, 0)
	ids, err := session.Search(since)
	if err != nil {
		log.Printf("[Ingest] search failed: %v", err)
		return fmt.Errorf("searching mailbox: %w", err)
	}

	batch := ingest.NewBatch()
	if len(ids) > 0 {
		// Each body parses independently; admits are serialized
		// inside the batch. The Wait is the drain point: no
		// hand-off until every fetched message has settled.
		var wg sync.WaitGroup
		for raw := range session.Fetch(ids) {
			wg.Add(1)
			go func(raw domain.RawMessage) {
				defer wg.Done()
				u.processMessage(batch, raw)
			}(raw)
		}
		wg.Wait()
	}

	records := batch.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReceivedAt.After(records[j].ReceivedAt)
	})

	u.publishedMu.Lock()
	u.published = records
	u.publishedMu.Unlock()

	for _, rec := range records {
		if err := u.repo.Save(rec); err != nil {
			log.Printf("[Ingest] saving record %d: %v", rec.SeqID, err)
		}
	}

	log.Printf("[Ingest] cycle complete: %d records from %d messages", len(records), len(ids))
	return nil
}

// processMessage runs the per-message half of the pipeline: parse,
// classify, extract, admit. A parse failure skips this message only.
func (u *reservationUsecase) processMessage(batch *ingest.Batch, raw domain.RawMessage) {
	parsed, err := ingest.ParseMessage(raw)
	if err != nil {
		log.Printf("[Ingest] %v", err)
		return
	}

	fields := extract.Extract(parsed.Body)

	switch extract.Classify(parsed.Subject) {
	case domain.KindOriginal:
		batch.AdmitOriginal(recordFrom(parsed, fields))
	case domain.KindReply:
		batch.AdmitReply(fields)
	case domain.KindOther:
		if u.retainOther {
			batch.AdmitOther(recordFrom(parsed, fields))
		}
	}
}

func recordFrom(parsed *domain.ParsedMessage, fields extract.Fields) *domain.ReservationRecord {
	return &domain.ReservationRecord{
		SeqID:          parsed.SeqID,
		Subject:        parsed.Subject,
		Sender:         parsed.From,
		Body:           parsed.Body,
		ReceivedAt:     parsed.Date,
		RequesterName:  fields.Name,
		PartySize:      fields.PartySize,
		ReservationAt:  fields.ReservationAt,
		RequesterEmail: fields.RequesterEmail,
	}
}

// publishedCopy snapshots the published batch as value copies. Readers
// must never alias the stored records: SetStatus mutates them later,
// possibly while a response is being marshalled.
func (u *reservationUsecase) publishedCopy() []*domain.ReservationRecord {
	u.publishedMu.RLock()
	defer u.publishedMu.RUnlock()

	records := make([]*domain.ReservationRecord, len(u.published))
	for i, rec := range u.published {
		clone := *rec
		records[i] = &clone
	}
	return records
}

func (u *reservationUsecase) ListRecords(sortBy string) []*domain.ReservationRecord {
	records := u.publishedCopy()

	if sortBy == "reservationDate" {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].EffectiveDate().After(records[j].EffectiveDate())
		})
	} else {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ReceivedAt.After(records[j].ReceivedAt)
		})
	}
	return records
}

func (u *reservationUsecase) SetStatus(name, email string, day time.Time, status bool) (*domain.ReservationRecord, error) {
	rec, err := u.repo.UpdateStatus(name, email, day, status)
	if err != nil {
		return nil, err
	}

	// Mirror into the published batch so the list reflects the
	// change without another cycle.
	u.publishedMu.Lock()
	for _, published := range u.published {
		if published.RequesterName == name && published.RequesterEmail == email &&
			sameCalendarDay(published.EffectiveDate(), day) {
			published.HasReply = status
			break
		}
	}
	u.publishedMu.Unlock()

	return rec, nil
}

func (u *reservationUsecase) SearchRecords(query string) []*domain.ReservationRecord {
	var matches []*domain.ReservationRecord
	for _, rec := range u.publishedCopy() {
		if fuzzy.MatchRecord(query, rec.Subject, rec.RequesterName, rec.RequesterEmail, rec.Sender) {
			matches = append(matches, rec)
		}
	}
	return matches
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
