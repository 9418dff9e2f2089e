package extract

import (
	"strings"

	"reservation-backend/internal/reservation/domain"
)

const (
	// TriggerPhrase marks a new reservation request subject.
	TriggerPhrase = "Neue Reservierungsanfrage"
	// ReplyPrefix is the mail client's answer prefix.
	ReplyPrefix = "AW:"
)

// Classify labels a message by its subject line. A reply to a request
// is recognised by the prefix alone so that forwarded or re-replied
// subjects still count.
func Classify(subject string) domain.Kind {
	if strings.HasPrefix(subject, ReplyPrefix) {
		return domain.KindReply
	}
	if strings.Contains(subject, TriggerPhrase) {
		return domain.KindOriginal
	}
	return domain.KindOther
}
