package delivery

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reservation-backend/internal/reservation/dto"
	"reservation-backend/internal/reservation/extract"
	"reservation-backend/internal/reservation/repository"
	"reservation-backend/internal/reservation/usecase"
)

type ReservationHandler struct {
	reservationUsecase usecase.ReservationUsecase
}

func NewReservationHandler(reservationUsecase usecase.ReservationUsecase) *ReservationHandler {
	return &ReservationHandler{
		reservationUsecase: reservationUsecase,
	}
}

// GetEmails returns the published batch.
// GET /api/emails?sortBy=reservationDate
func (h *ReservationHandler) GetEmails(c *gin.Context) {
	sortBy := c.Query("sortBy")
	records := h.reservationUsecase.ListRecords(sortBy)

	c.JSON(http.StatusOK, dto.RecordsResponse{
		Emails: dto.FromRecords(records),
		Total:  len(records),
	})
}

// RefreshEmails runs one full ingestion cycle synchronously.
// POST /api/refresh-emails
func (h *ReservationHandler) RefreshEmails(c *gin.Context) {
	if err := h.reservationUsecase.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "emails refreshed"})
}

// UpdateStatus sets or clears the answered flag on a stored record.
// POST /api/emails/:id/status
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := parseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized date format"})
		return
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}

	rec, err := h.reservationUsecase.SetStatus(req.Name, req.UserEmail, day, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FromRecord(rec))
}

// SearchEmails fuzzy-searches the published batch.
// GET /api/emails/search?q=schmidt
func (h *ReservationHandler) SearchEmails(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	records := h.reservationUsecase.SearchRecords(query)
	c.JSON(http.StatusOK, dto.RecordsResponse{
		Emails: dto.FromRecords(records),
		Total:  len(records),
	})
}

// parseDay accepts the timestamp formats the frontend sends back:
// the raw JSON timestamp or either display format.
func parseDay(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		extract.TimestampLayout,
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
