package main

import (
	"context"
	"log"

	api "reservation-backend/cmd/api"
	reservationdomain "reservation-backend/internal/reservation/domain"
	reservationRepo "reservation-backend/internal/reservation/repository"
	reservationUsecase "reservation-backend/internal/reservation/usecase"
	"reservation-backend/pkg/config"
	"reservation-backend/pkg/database"
	"reservation-backend/pkg/imap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&reservationdomain.ReservationRecord{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repository (dependency injection)
	repo := reservationRepo.NewReservationRepository(db)

	// Initialize IMAP service
	imapService := imap.NewService(imap.Options{
		Host:        cfg.IMAPHost,
		Port:        cfg.IMAPPort,
		Username:    cfg.IMAPUser,
		Password:    cfg.IMAPPassword,
		UseTLS:      cfg.IMAPTLS,
		ConnTimeout: cfg.IMAPConnTimeout,
		AuthTimeout: cfg.IMAPAuthTimeout,
	})
	dial := func(ctx context.Context) (reservationUsecase.MailSession, error) {
		return imapService.Open(ctx)
	}

	// Initialize use case
	resUsecase := reservationUsecase.NewReservationUsecase(repo, dial, cfg.SearchWindowMonths, cfg.RetainOther)

	// Ingest once at boot so the list is populated before the first
	// manual refresh.
	if cfg.RefreshOnStart {
		if err := resUsecase.Refresh(context.Background()); err != nil {
			log.Printf("[Ingest] startup cycle failed: %v", err)
		}
	}

	// Initialize HTTP handler
	handler := api.NewHandler(resUsecase, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
