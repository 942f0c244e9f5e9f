package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingService is the direct, non-conversational booking API.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	SearchProviders(ctx context.Context, q booking.SearchQuery) ([]booking.RankedProvider, error)
}

type BookingHandler struct {
	Service BookingService
}

func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

// CreateBooking inserts a booking unless the provider is already booked in
// the requested window.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	logger := getLogger(c)

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	created, err := h.Service.CreateBooking(c.Request.Context(), req)
	var conflict *booking.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"message":    "Provider is already booked in that window",
			"booking_id": conflict.BookingID,
		})
		return
	case errors.Is(err, booking.ErrInvalidWindow):
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking window", err.Error())
		return
	case err != nil:
		logger.Error("failed to create booking", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create booking", "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": created.ID})
}

// SearchProviders ranks providers for
// ?service&lat&lng&start&end&max_km=30&limit=10.
func (h *BookingHandler) SearchProviders(c *gin.Context) {
	logger := getLogger(c)

	q := booking.SearchQuery{Service: c.Query("service")}
	if q.Service == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required query parameter: service", "")
		return
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" || lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid coordinates", "lat and lng must both be numbers")
			return
		}
		q.Coords = models.NewPoint(lat, lng)
	}

	var err error
	if q.Start, err = optionalTime(c, "start"); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid start", err.Error())
		return
	}
	if q.End, err = optionalTime(c, "end"); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid end", err.Error())
		return
	}
	if q.MaxKm, err = strconv.ParseFloat(c.DefaultQuery("max_km", "30"), 64); err != nil || q.MaxKm <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid max_km", "")
		return
	}
	if q.Limit, err = strconv.Atoi(c.DefaultQuery("limit", "10")); err != nil || q.Limit <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid limit", "")
		return
	}

	ranked, err := h.Service.SearchProviders(c.Request.Context(), q)
	switch {
	case errors.Is(err, booking.ErrNoProviders):
		c.JSON(http.StatusOK, gin.H{"providers": []booking.RankedProvider{}})
		return
	case errors.Is(err, booking.ErrInvalidWindow):
		utils.JSONError(c, http.StatusBadRequest, "Invalid time window", err.Error())
		return
	case err != nil:
		logger.Error("provider search failed", zap.String("service", q.Service), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Provider search failed", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": ranked})
}

func optionalTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
