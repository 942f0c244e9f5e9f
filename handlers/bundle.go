package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints
	ChatHandler gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	SearchProvidersHandler gin.HandlerFunc

	// Ops endpoints
	ListModelsHandler gin.HandlerFunc
	HealthHandler     gin.HandlerFunc
}
