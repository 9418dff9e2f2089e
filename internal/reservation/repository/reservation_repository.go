package repository

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reservation-backend/internal/reservation/domain"
)

// gormReservationRepository implements ReservationRepository using GORM
type gormReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new GORM-based ReservationRepository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &gormReservationRepository{db: db}
}

func (r *gormReservationRepository) Save(rec *domain.ReservationRecord) error {
	var count int64
	err := r.db.Model(&domain.ReservationRecord{}).
		Where("email = ? AND DATE(COALESCE(date, input)) = DATE(?) AND persons = ?",
			rec.RequesterEmail, rec.EffectiveDate(), rec.PartySize).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[DB] record for %s on %s already stored", rec.RequesterEmail, rec.EffectiveDate().Format("2006-01-02"))
		return nil
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	return r.db.Create(rec).Error
}

func (r *gormReservationRepository) UpdateStatus(name, email string, day time.Time, status bool) (*domain.ReservationRecord, error) {
	result := r.db.Model(&domain.ReservationRecord{}).
		Where("name = ? AND email = ? AND DATE(COALESCE(date, input)) = DATE(?)", name, email, day).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var rec domain.ReservationRecord
	err := r.db.Where("name = ? AND email = ? AND DATE(COALESCE(date, input)) = DATE(?)", name, email, day).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
