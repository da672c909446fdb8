package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

// stubOrderService returns canned results so the tests exercise routing,
// identity resolution and the response envelope only.
type stubOrderService struct {
	order     *domain.Order
	orders    []domain.Order
	events    []domain.OrderEvent
	err       error
	lastActor *domain.Actor
	lastLabel string
}

func (s *stubOrderService) CreateFromCart(_ context.Context, actor *domain.Actor, _ domain.CustomerInfo, _ []domain.OrderItem) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) CreateDirect(_ context.Context, actor *domain.Actor, _ []domain.OrderItem, _ domain.CustomerInfo) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) Confirm(_ context.Context, _ string, actor *domain.Actor) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) SetStatus(_ context.Context, _ string, label string, actor *domain.Actor) (*domain.Order, error) {
	s.lastActor = actor
	s.lastLabel = label
	return s.order, s.err
}

func (s *stubOrderService) Ack(_ context.Context, _ string, actor *domain.Actor) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) ListActive(_ context.Context, _ int) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) ListByOwner(_ context.Context, actor *domain.Actor) ([]domain.Order, error) {
	s.lastActor = actor
	return s.orders, s.err
}

func (s *stubOrderService) RecentEvents(_ context.Context, _ int, actor *domain.Actor) ([]domain.OrderEvent, error) {
	s.lastActor = actor
	return s.events, s.err
}

func newTestRouter(service *stubOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	router := gin.New()
	router.Use(IdentityMiddleware(logger))
	NewOrderHandler(service, logger).RegisterRoutes(router)
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateOrderEndpoint(t *testing.T) {
	service := &stubOrderService{order: &domain.Order{ID: "o-1", OrderNum: 7, Status: domain.StatusPending}}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"customer_name":"Aliya","customer_city":"Almaty"}`))
	req.Header.Set("X-User-ID", "42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	require.NotNil(t, service.lastActor)
	assert.Equal(t, 42, service.lastActor.ID)
	assert.Equal(t, domain.RoleClient, service.lastActor.Role)
}

func TestCreateOrderRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{not json`))
	req.Header.Set("X-User-ID", "42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "invalid_body", body["error"])
}

func TestAnonymousRequestMapsToLoginRequired(t *testing.T) {
	service := &stubOrderService{err: domain.ErrUnauthenticated}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "login_required", body["error"])
	assert.Nil(t, service.lastActor)
}

func TestSetStatusEndpoint(t *testing.T) {
	service := &stubOrderService{order: &domain.Order{ID: "o-1", Status: domain.StatusShipped}}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/status", strings.NewReader(`{"status":"sent"}`))
	req.Header.Set("X-User-ID", "99")
	req.Header.Set("X-User-Role", "worker")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// the label is passed through untranslated; normalization is a service
	// concern
	assert.Equal(t, "sent", service.lastLabel)
	require.NotNil(t, service.lastActor)
	assert.Equal(t, domain.RoleWorker, service.lastActor.Role)
}

func TestSetStatusRequiresStatusField(t *testing.T) {
	router := newTestRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/status", strings.NewReader(`{}`))
	req.Header.Set("X-User-ID", "99")
	req.Header.Set("X-User-Role", "worker")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "missing_status", body["error"])
}

func TestConfirmMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"wrong state", domain.ErrInvalidState, http.StatusConflict, "invalid_status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubOrderService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/confirm", nil)
			req.Header.Set("X-User-ID", "1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tc.wantBody, body["error"])
		})
	}
}

func TestMyOrdersSplitsActiveAndFinished(t *testing.T) {
	service := &stubOrderService{orders: []domain.Order{
		{ID: "o-3", Status: domain.StatusShipped},
		{ID: "o-2", Status: domain.StatusDelivered},
		{ID: "o-1", Status: domain.StatusCancelled},
	}}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/my_orders", nil)
	req.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["active"], 1)
	assert.Len(t, body["finished"], 2)
}

func TestListActiveReturnsEmptyArrayNotNull(t *testing.T) {
	router := newTestRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"orders":[]`)
}

func TestInvalidIdentityHeaderStaysAnonymous(t *testing.T) {
	service := &stubOrderService{err: domain.ErrUnauthenticated}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/my_orders", nil)
	req.Header.Set("X-User-ID", "not-a-number")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, service.lastActor)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
}
