package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	reservationUsecase "reservation-backend/internal/reservation/usecase"
	"reservation-backend/pkg/config"
)

type Handler struct {
	reservationUsecase reservationUsecase.ReservationUsecase
	config             *config.Config
}

func NewHandler(resUsecase reservationUsecase.ReservationUsecase, cfg *config.Config) *Handler {
	return &Handler{
		reservationUsecase: resUsecase,
		config:             cfg,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// The dashboard is served from a different origin.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	SetupRoutes(r, h.reservationUsecase)

	return r.Run(addr)
}
