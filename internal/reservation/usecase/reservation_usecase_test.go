package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"reservation-backend/internal/reservation/domain"
	"reservation-backend/internal/reservation/repository"
)

type fakeSession struct {
	ids       []uint32
	msgs      []domain.RawMessage
	searchErr error

	mu     sync.Mutex
	closed int
}

func (s *fakeSession) Search(since time.Time) ([]uint32, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.ids, nil
}

func (s *fakeSession) Fetch(ids []uint32) <-chan domain.RawMessage {
	out := make(chan domain.RawMessage)
	go func() {
		defer close(out)
		for _, msg := range s.msgs {
			out <- msg
		}
	}()
	return out
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeRepo struct {
	mu        sync.Mutex
	saved     []*domain.ReservationRecord
	updateErr error
}

func (r *fakeRepo) Save(rec *domain.ReservationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, rec)
	return nil
}

func (r *fakeRepo) UpdateStatus(name, email string, day time.Time, status bool) (*domain.ReservationRecord, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	return &domain.ReservationRecord{
		RequesterName:  name,
		RequesterEmail: email,
		HasReply:       status,
	}, nil
}

func dialTo(session MailSession) DialFunc {
	return func(ctx context.Context) (MailSession, error) {
		return session, nil
	}
}

func rawRequest(seq uint32, subject, date, name, persons, reservation, email string) domain.RawMessage {
	var sb strings.Builder
	sb.WriteString("From: Restaurant Website <noreply@example.com>\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("Date: " + date + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	if name != "" {
		sb.WriteString("Auf den Namen: " + name + "\r\n")
	}
	if persons != "" {
		sb.WriteString("Für: " + persons + " Personen\r\n")
	}
	if reservation != "" {
		sb.WriteString("Am. " + reservation + "\r\n")
	}
	if email != "" {
		sb.WriteString("Von: " + email + "\r\n")
	}
	return domain.RawMessage{SeqID: seq, Body: []byte(sb.String())}
}

func TestRefreshEmptySearchSucceeds(t *testing.T) {
	session := &fakeSession{}
	repo := &fakeRepo{}
	uc := NewReservationUsecase(repo, dialTo(session), 3, false)

	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := uc.ListRecords(""); len(got) != 0 {
		t.Fatalf("expected empty batch, got %d records", len(got))
	}
	if session.closeCount() != 1 {
		t.Fatalf("session must be closed exactly once, got %d", session.closeCount())
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing should be persisted, got %d", len(repo.saved))
	}
}

func TestRefreshFullCycle(t *testing.T) {
	session := &fakeSession{
		ids: []uint32{1, 2, 3, 4},
		msgs: []domain.RawMessage{
			rawRequest(1, "Neue Reservierungsanfrage", "Sun, 12 Jan 2025 10:00:00 +0000",
				"Schmidt", "4", "12. Januar 2025, 19:00", "schmidt@example.com"),
			// Same requester, same reservation day: duplicate.
			rawRequest(2, "Neue Reservierungsanfrage", "Sun, 12 Jan 2025 11:00:00 +0000",
				"Schmidt", "4", "12. Januar 2025, 19:00", "schmidt@example.com"),
			// Unrelated subject is dropped entirely.
			rawRequest(3, "Newsletter Februar", "Sun, 12 Jan 2025 12:00:00 +0000",
				"", "", "", "news@example.com"),
			// Unparseable message is logged and skipped.
			{SeqID: 4},
		},
	}
	repo := &fakeRepo{}
	uc := NewReservationUsecase(repo, dialTo(session), 3, false)

	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := uc.ListRecords("")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.RequesterName != "Schmidt" || rec.PartySize != "4" {
		t.Fatalf("unexpected record fields: %+v", rec)
	}
	if rec.HasReply {
		t.Fatalf("record should start unanswered")
	}
	if rec.Kind != domain.KindOriginal {
		t.Fatalf("expected original kind, got %q", rec.Kind)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(repo.saved))
	}
	if session.closeCount() != 1 {
		t.Fatalf("session must be closed exactly once, got %d", session.closeCount())
	}
}

func TestRefreshRetainsOtherWhenConfigured(t *testing.T) {
	msgs := []domain.RawMessage{
		rawRequest(1, "Newsletter Februar", "Sun, 12 Jan 2025 12:00:00 +0000",
			"Irrelevant", "9", "", "news@example.com"),
	}

	uc := NewReservationUsecase(&fakeRepo{}, dialTo(&fakeSession{ids: []uint32{1}, msgs: msgs}), 3, true)
	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := uc.ListRecords("")
	if len(records) != 1 {
		t.Fatalf("expected 1 retained record, got %d", len(records))
	}
	rec := records[0]
	if rec.Kind != domain.KindOther {
		t.Fatalf("expected other kind, got %q", rec.Kind)
	}
	if rec.RequesterName != domain.Unknown || rec.PartySize != domain.Unknown || rec.ReservationAt != nil {
		t.Fatalf("person fields must be forced to unknown: %+v", rec)
	}
}

func TestRefreshHardErrorKeepsPublishedBatch(t *testing.T) {
	good := &fakeSession{
		ids: []uint32{1},
		msgs: []domain.RawMessage{
			rawRequest(1, "Neue Reservierungsanfrage", "Sun, 12 Jan 2025 10:00:00 +0000",
				"Schmidt", "4", "12. Januar 2025, 19:00", "schmidt@example.com"),
		},
	}
	repo := &fakeRepo{}
	uc := NewReservationUsecase(repo, dialTo(good), 3, false).(*reservationUsecase)

	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second cycle fails during search; the published batch must
	// stay untouched and the session must still be released.
	failing := &fakeSession{searchErr: errors.New("server unavailable")}
	uc.dial = dialTo(failing)

	if err := uc.Refresh(context.Background()); err == nil {
		t.Fatalf("expected search error")
	}
	if failing.closeCount() != 1 {
		t.Fatalf("failed session must be closed, got %d closes", failing.closeCount())
	}
	if got := uc.ListRecords(""); len(got) != 1 {
		t.Fatalf("published batch should survive a failed cycle, got %d records", len(got))
	}

	// A failing dial aborts before any session exists.
	uc.dial = func(ctx context.Context) (MailSession, error) {
		return nil, errors.New("connection refused")
	}
	if err := uc.Refresh(context.Background()); err == nil {
		t.Fatalf("expected connection error")
	}
	if got := uc.ListRecords(""); len(got) != 1 {
		t.Fatalf("published batch should survive a failed connect, got %d records", len(got))
	}
}

func TestListRecordsSorting(t *testing.T) {
	session := &fakeSession{
		ids: []uint32{1, 2, 3},
		msgs: []domain.RawMessage{
			// Received earliest, reserved latest.
			rawRequest(1, "Neue Reservierungsanfrage", "Wed, 15 Jan 2025 10:00:00 +0000",
				"Schmidt", "4", "20. Januar 2025, 19:00", "a@example.com"),
			// No reservation time: sorts by received time.
			rawRequest(2, "Neue Reservierungsanfrage", "Wed, 15 Jan 2025 11:00:00 +0000",
				"Huber", "2", "", "b@example.com"),
			// Received latest, reserved earliest.
			rawRequest(3, "Neue Reservierungsanfrage", "Wed, 15 Jan 2025 12:00:00 +0000",
				"Meier", "6", "10. Januar 2025, 09:00", "c@example.com"),
		},
	}
	uc := NewReservationUsecase(&fakeRepo{}, dialTo(session), 3, false)

	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byReceived := uc.ListRecords("")
	wantReceived := []string{"c@example.com", "b@example.com", "a@example.com"}
	for i, want := range wantReceived {
		if byReceived[i].RequesterEmail != want {
			t.Fatalf("received order[%d]: expected %s, got %s", i, want, byReceived[i].RequesterEmail)
		}
	}

	byReservation := uc.ListRecords("reservationDate")
	wantReservation := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i, want := range wantReservation {
		if byReservation[i].RequesterEmail != want {
			t.Fatalf("reservation order[%d]: expected %s, got %s", i, want, byReservation[i].RequesterEmail)
		}
	}
}

func TestSetStatusMirrorsPublishedBatch(t *testing.T) {
	session := &fakeSession{
		ids: []uint32{1},
		msgs: []domain.RawMessage{
			rawRequest(1, "Neue Reservierungsanfrage", "Sun, 12 Jan 2025 10:00:00 +0000",
				"Schmidt", "4", "20. Januar 2025, 19:00", "schmidt@example.com"),
		},
	}
	repo := &fakeRepo{}
	uc := NewReservationUsecase(repo, dialTo(session), 3, false)

	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.Local)
	if _, err := uc.SetStatus("Schmidt", "schmidt@example.com", day, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !uc.ListRecords("")[0].HasReply {
		t.Fatalf("published record should reflect the status change")
	}

	// Unknown record: repository miss propagates, batch untouched.
	repo.updateErr = repository.ErrNotFound
	if _, err := uc.SetStatus("Niemand", "nobody@example.com", day, true); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecordsDetachedFromStatusChanges(t *testing.T) {
	session := &fakeSession{
		ids: []uint32{1},
		msgs: []domain.RawMessage{
			rawRequest(1, "Neue Reservierungsanfrage", "Sun, 12 Jan 2025 10:00:00 +0000",
				"Schmidt", "4", "20. Januar 2025, 19:00", "schmidt@example.com"),
		},
	}
	uc := NewReservationUsecase(&fakeRepo{}, dialTo(session), 3, false)
	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := uc.ListRecords("")[0]
	day := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.Local)

	// Readers hammer the batch while the status flips; listings taken
	// before the write must not change under the caller's feet.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = uc.ListRecords("")[0].HasReply
				_ = uc.SearchRecords("schmidt")
			}
		}()
	}
	if _, err := uc.SetStatus("Schmidt", "schmidt@example.com", day, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wg.Wait()

	if before.HasReply {
		t.Fatalf("earlier listing must not alias the published record")
	}
	if !uc.ListRecords("")[0].HasReply {
		t.Fatalf("fresh listing should reflect the status change")
	}
}

func TestSearchRecords(t *testing.T) {
	session := &fakeSession{
		ids: []uint32{1, 2},
		msgs: []domain.RawMessage{
			rawRequest(1, "Neue Reservierungsanfrage", "Sun, 12 Jan 2025 10:00:00 +0000",
				"Schmidt", "4", "12. Januar 2025, 19:00", "schmidt@example.com"),
			rawRequest(2, "Neue Reservierungsanfrage", "Mon, 13 Jan 2025 10:00:00 +0000",
				"Huber", "2", "13. Januar 2025, 18:00", "huber@example.com"),
		},
	}
	uc := NewReservationUsecase(&fakeRepo{}, dialTo(session), 3, false)
	if err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches := uc.SearchRecords("schmidt")
	if len(matches) != 1 || matches[0].RequesterName != "Schmidt" {
		t.Fatalf("expected the Schmidt record, got %d matches", len(matches))
	}

	// Typo within edit distance still matches.
	matches = uc.SearchRecords("schmitd")
	if len(matches) != 1 {
		t.Fatalf("expected fuzzy match for typo, got %d matches", len(matches))
	}
}
