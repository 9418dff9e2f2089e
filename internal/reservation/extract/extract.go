package extract

import (
	"regexp"
	"strings"
	"time"

	"reservation-backend/internal/reservation/domain"
)

// The request mails are produced by a fixed template, so extraction is
// plain pattern matching. The patterns mirror the template labels
// exactly, including the "Am." date label.
var (
	nameRe    = regexp.MustCompile(`Auf den Namen:\s*(.*)`)
	personsRe = regexp.MustCompile(`Für:\s*(\d+)\s*Personen`)
	dateRe    = regexp.MustCompile(`Am.\s*(.*)`)
	emailRe   = regexp.MustCompile(`Von:\s*(.*)`)
)

// Fields holds everything the extractor can recover from one message
// body. Missing fields degrade to domain.Unknown (or nil for the
// reservation time); extraction never fails.
type Fields struct {
	Name           string
	PartySize      string
	ReservationAt  *time.Time
	RequesterEmail string
}

// Extract applies the template patterns to a message body.
func Extract(body string) Fields {
	f := Fields{
		Name:           domain.Unknown,
		PartySize:      domain.Unknown,
		RequesterEmail: domain.Unknown,
	}

	if m := nameRe.FindStringSubmatch(body); m != nil {
		f.Name = strings.TrimSpace(m[1])
	}
	if m := personsRe.FindStringSubmatch(body); m != nil {
		f.PartySize = m[1]
	}
	if m := dateRe.FindStringSubmatch(body); m != nil {
		f.ReservationAt = ParseGermanDate(strings.TrimSpace(m[1]))
	}
	if m := emailRe.FindStringSubmatch(body); m != nil {
		f.RequesterEmail = strings.TrimSpace(m[1])
	}

	return f
}
