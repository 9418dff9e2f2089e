package dto

import (
	"time"

	"reservation-backend/internal/reservation/domain"
	"reservation-backend/internal/reservation/extract"
)

// RecordResponse is one reservation record as the frontend consumes
// it, with pre-formatted display dates alongside the raw timestamps.
type RecordResponse struct {
	ID                int        `json:"id"`
	Subject           string     `json:"subject"`
	From              string     `json:"from"`
	Date              time.Time  `json:"date"`
	FormattedDate     string     `json:"formattedDate"`
	Name              string     `json:"name"`
	Persons           string     `json:"persons"`
	DateTime          *time.Time `json:"dateTime"`
	FormattedDateTime string     `json:"formattedDateTime"`
	UserEmail         string     `json:"userEmail"`
	Text              string     `json:"text"`
	HasReply          bool       `json:"hasReply"`
	Kind              string     `json:"kind"`
}

type RecordsResponse struct {
	Emails []RecordResponse `json:"emails"`
	Total  int              `json:"total"`
}

// StatusUpdateRequest identifies a record by the same triple the
// persistence layer keys status updates on. Status defaults to true;
// false is the explicit mark-unread action.
type StatusUpdateRequest struct {
	Name      string `json:"name" binding:"required"`
	UserEmail string `json:"userEmail" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Status    *bool  `json:"status"`
}

// FromRecord converts a domain record into its response shape.
func FromRecord(rec *domain.ReservationRecord) RecordResponse {
	formattedDateTime := "N/A"
	if rec.ReservationAt != nil {
		formattedDateTime = extract.FormatTimestamp(*rec.ReservationAt)
	}

	return RecordResponse{
		ID:                int(rec.SeqID),
		Subject:           rec.Subject,
		From:              rec.Sender,
		Date:              rec.ReceivedAt,
		FormattedDate:     extract.FormatTimestamp(rec.ReceivedAt),
		Name:              rec.RequesterName,
		Persons:           rec.PartySize,
		DateTime:          rec.ReservationAt,
		FormattedDateTime: formattedDateTime,
		UserEmail:         rec.RequesterEmail,
		Text:              rec.Body,
		HasReply:          rec.HasReply,
		Kind:              string(rec.Kind),
	}
}

// FromRecords converts a batch snapshot, preserving order.
func FromRecords(records []*domain.ReservationRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, rec := range records {
		out[i] = FromRecord(rec)
	}
	return out
}
