package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"reservation-backend/internal/reservation/domain"
)

// ParseMessage decodes one raw mailbox entry into its parsed form.
// The header date may be missing or malformed in the wild; the
// current time is substituted so the record still sorts somewhere
// sensible. A nil return with an error means the message is skipped.
func ParseMessage(raw domain.RawMessage) (*domain.ParsedMessage, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("reading message %d: %w", raw.SeqID, err)
	}
	defer mr.Close()

	parsed := &domain.ParsedMessage{
		SeqID:   raw.SeqID,
		Subject: headerSubject(mr),
		From:    headerFrom(mr),
		Date:    headerDate(mr, raw.InternalDate),
		Body:    textBody(mr, raw.Body),
	}

	return parsed, nil
}

func headerSubject(mr *mail.Reader) string {
	subject, err := mr.Header.Subject()
	if err != nil {
		return mr.Header.Get("Subject")
	}
	return subject
}

// headerFrom renders the sender the way the mail client displays it:
// the display name with the address in angle brackets, or the bare
// address when there is no name.
func headerFrom(mr *mail.Reader) string {
	addrs, err := mr.Header.AddressList("From")
	if err != nil || len(addrs) == 0 {
		return mr.Header.Get("From")
	}
	from := addrs[0]
	if from.Name != "" {
		return fmt.Sprintf("%s <%s>", from.Name, from.Address)
	}
	return from.Address
}

func headerDate(mr *mail.Reader, internalDate time.Time) time.Time {
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		return date
	}
	if !internalDate.IsZero() {
		return internalDate
	}
	return time.Now()
}

// textBody walks the MIME parts and returns the first text/plain
// inline part. When the walk yields nothing the raw bytes are used as
// a last resort so extraction still gets a chance.
func textBody(mr *mail.Reader, raw []byte) string {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") {
			continue
		}
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		return string(body)
	}
	return string(raw)
}
