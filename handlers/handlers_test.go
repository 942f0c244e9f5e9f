package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memoryRepo "hustlr/database/repository/memory"
	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoAssistant struct {
	got models.ChatRequest
	err error
}

func (e *echoAssistant) HandleMessage(_ context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	e.got = req
	if e.err != nil {
		return models.ChatResponse{}, e.err
	}
	return models.ChatResponse{Reply: "echo: " + req.Message, SessionID: "s-1"}, nil
}

type fakeLister struct {
	available []models.ModelInfo
	err       error
}

func (f fakeLister) Candidates(fast bool) []string {
	if fast {
		return []string{"flash-002", "flash"}
	}
	return []string{"pro-002", "pro"}
}

func (f fakeLister) ListModels(context.Context) ([]models.ModelInfo, error) { return f.available, f.err }

type testServer struct {
	router   *gin.Engine
	bookings *memoryRepo.BookingRepo
	chat     *echoAssistant
}

func newTestServer(t *testing.T, lister *fakeLister) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	providers := memoryRepo.NewProviderRepo()
	bookings := memoryRepo.NewBookingRepo()
	rating := 4.5
	require.NoError(t, providers.Create(ctx, &models.Provider{
		ID: "p1", Phone: "+1", Name: "Ann's Plumbing", ServiceType: "plumber",
		Active: true, Rating: &rating, CoverageCoords: models.NewPoint(0.01, 0),
	}))

	availability := &booking.Availability{Bookings: bookings}
	ranker := booking.NewRanker(providers, availability, time.Hour, 30, logger)
	service := booking.NewService(bookings, availability, ranker, logger)

	echo := &echoAssistant{}
	chatHandler := NewChatHandler(echo)
	bookingHandler := NewBookingHandler(service)
	modelsHandler := NewModelsHandler(nil)
	if lister != nil {
		modelsHandler = NewModelsHandler(*lister)
	}

	r := gin.New()
	r.POST("/v1/chat", chatHandler.HandleChat)
	r.POST("/v1/bookings", bookingHandler.CreateBooking)
	r.GET("/v1/providers/search", bookingHandler.SearchProviders)
	r.GET("/v1/models", modelsHandler.ListModels)
	r.GET("/health", Health)
	return &testServer{router: r, bookings: bookings, chat: echo}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestChatHandler(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/v1/chat", `{"sender":"+254700000001","message":"hi","lat":-1.2,"lng":36.8,"fast":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"echo: hi","session_id":"s-1"}`, w.Body.String())
	assert.True(t, s.chat.got.Fast)
	require.True(t, s.chat.got.HasCoords())
	assert.Equal(t, 36.8, *s.chat.got.Lng)

	w = s.do(http.MethodPost, "/v1/chat", `{"sender":"x","message":"hi","lat":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.chat.err = errors.New("message is empty")
	w = s.do(http.MethodPost, "/v1/chat", `{"sender":"x","message":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingHandler(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"user_id":"+2547","provider_id":"p1","start":"2030-05-02T10:00:00Z","end":"2030-05-02T11:00:00Z","notes":"leak"}`

	w := s.do(http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])

	w = s.do(http.MethodPost, "/v1/bookings",
		`{"user_id":"+2548","provider_id":"p1","start":"2030-05-02T10:30:00Z","end":"2030-05-02T11:30:00Z"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), created["id"])

	// Touching windows do not conflict.
	w = s.do(http.MethodPost, "/v1/bookings",
		`{"user_id":"+2548","provider_id":"p1","start":"2030-05-02T11:00:00Z","end":"2030-05-02T12:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, s.bookings.All(), 2)

	w = s.do(http.MethodPost, "/v1/bookings",
		`{"user_id":"+2548","provider_id":"p1","start":"2030-05-02T12:00:00Z","end":"2030-05-02T11:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/bookings", `{"user_id":"+2548"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchProvidersHandler(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/v1/providers/search?service=Plumber&lat=0&lng=0&start=2030-05-02T10:00:00Z&end=2030-05-02T11:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Providers []booking.RankedProvider `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "p1", body.Providers[0].Provider.ID)
	assert.True(t, body.Providers[0].Available)
	require.NotNil(t, body.Providers[0].DistanceMeters)

	w = s.do(http.MethodGet, "/v1/providers/search?service=gardener", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"providers":[]}`, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/v1/providers/search", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/v1/providers/search?service=plumber&lat=abc&lng=1", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/v1/providers/search?service=plumber&start=tomorrow", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/v1/providers/search?service=plumber&limit=0", "").Code)
}

func TestListModelsHandler(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/v1/models", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"local"`)

	s = newTestServer(t, &fakeLister{available: []models.ModelInfo{{Name: "models/pro-002"}}})
	w = s.do(http.MethodGet, "/v1/models?remote=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"candidates":["pro-002","pro"]`)
	assert.Contains(t, w.Body.String(), `"fast_candidates":["flash-002","flash"]`)
	assert.Contains(t, w.Body.String(), "models/pro-002")

	s = newTestServer(t, &fakeLister{err: errors.New("permission denied")})
	assert.Equal(t, http.StatusBadGateway, s.do(http.MethodGet, "/v1/models?remote=true", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/models", "").Code)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, nil)
	utils.CheckHealth(context.Background(), nil, nil)

	w := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":true`)
}
