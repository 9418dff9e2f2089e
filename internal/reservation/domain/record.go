package domain

import "time"

// Unknown is the placeholder used when a field cannot be extracted
// from a message body.
const Unknown = "Unbekannt"

// Kind classifies where a record came from. Replies never become
// records of their own; they only flip HasReply on an existing one.
type Kind string

const (
	KindOriginal Kind = "original"
	KindReply    Kind = "reply"
	KindOther    Kind = "other"
)

// RawMessage is one mailbox entry as delivered by a fetch. SeqID is
// unique within a single fetch batch only.
type RawMessage struct {
	SeqID        uint32
	Body         []byte
	InternalDate time.Time
}

// ParsedMessage is the decoded form of a RawMessage. Immutable after
// creation.
type ParsedMessage struct {
	SeqID   uint32
	Subject string
	From    string
	Date    time.Time
	Body    string
}

// ReservationRecord is the durable unit of output of one ingestion
// cycle. Persisted to the "emails" table kept from the legacy schema.
type ReservationRecord struct {
	ID             string     `json:"-" gorm:"primaryKey"`
	SeqID          uint32     `json:"id" gorm:"column:seq_id"`
	Subject        string     `json:"subject"`
	Sender         string     `json:"from" gorm:"column:sender"`
	Body           string     `json:"text" gorm:"column:text"`
	ReceivedAt     time.Time  `json:"date" gorm:"column:input"`
	RequesterName  string     `json:"name" gorm:"column:name"`
	PartySize      string     `json:"persons" gorm:"column:persons"`
	ReservationAt  *time.Time `json:"dateTime" gorm:"column:date"`
	RequesterEmail string     `json:"userEmail" gorm:"column:email"`
	HasReply       bool       `json:"hasReply" gorm:"column:status"`
	Kind           Kind       `json:"kind" gorm:"column:kind"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

// TableName keeps the table the legacy frontend and reports query.
func (ReservationRecord) TableName() string {
	return "emails"
}

// EffectiveDate is the reservation date when one was extracted, else
// the time the message arrived. Duplicate detection keys on its
// calendar day.
func (r *ReservationRecord) EffectiveDate() time.Time {
	if r.ReservationAt != nil {
		return *r.ReservationAt
	}
	return r.ReceivedAt
}
