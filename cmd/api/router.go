package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reservationDelivery "reservation-backend/internal/reservation/delivery"
	reservationUsecase "reservation-backend/internal/reservation/usecase"
)

func SetupRoutes(r *gin.Engine, resUsecase reservationUsecase.ReservationUsecase) {
	reservationHandler := reservationDelivery.NewReservationHandler(resUsecase)

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Reservation routes
		emails := api.Group("/emails")
		{
			emails.GET("", reservationHandler.GetEmails)
			emails.GET("/search", reservationHandler.SearchEmails)
			emails.POST("/:id/status", reservationHandler.UpdateStatus)
		}

		api.POST("/refresh-emails", reservationHandler.RefreshEmails)
	}
}
