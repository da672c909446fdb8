package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
	"github.com/axssiz/ParfumeProject/internal/usecase"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *logrus.Logger
}

func NewOrderHandler(service usecase.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: logger}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.POST("", h.CreateFromCart)
			orders.POST("/direct", h.CreateDirect)
			orders.GET("", h.ListActive)
			orders.POST("/:id/status", h.SetStatus)
			orders.POST("/:id/confirm", h.Confirm)
			orders.POST("/:id/ack", h.Ack)
		}
		api.GET("/my_orders", h.MyOrders)
		api.GET("/events", h.RecentEvents)
	}
	router.GET("/healthz", h.Health)
}

type createOrderRequest struct {
	domain.CustomerInfo
	// Items is normally ignored: the snapshot comes from the server-side
	// cart. It is only consulted when the cart store is unreachable.
	Items []domain.OrderItem `json:"items"`
}

func (h *OrderHandler) CreateFromCart(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind create order request: %v", err)
		ErrorResponse(c, domain.NewValidationError("invalid_body"))
		return
	}

	order, err := h.service.CreateFromCart(c.Request.Context(), CurrentActor(c), req.CustomerInfo, req.Items)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) CreateDirect(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind direct order request: %v", err)
		ErrorResponse(c, domain.NewValidationError("invalid_body"))
		return
	}

	order, err := h.service.CreateDirect(c.Request.Context(), CurrentActor(c), req.Items, req.CustomerInfo)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) ListActive(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	orders, err := h.service.ListActive(c.Request.Context(), limit)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	OKResponse(c, http.StatusOK, gin.H{"orders": orders})
}

// MyOrders returns the caller's orders split into active and finished, the
// shape the profile page consumes.
func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.service.ListByOwner(c.Request.Context(), CurrentActor(c))
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	active := []domain.Order{}
	finished := []domain.Order{}
	for _, order := range orders {
		if order.Status.Terminal() {
			finished = append(finished, order)
		} else {
			active = append(active, order)
		}
	}
	OKResponse(c, http.StatusOK, gin.H{"active": active, "finished": finished})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		ErrorResponse(c, domain.NewValidationError("missing_status"))
		return
	}

	order, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req.Status, CurrentActor(c))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	order, err := h.service.Confirm(c.Request.Context(), c.Param("id"), CurrentActor(c))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) Ack(c *gin.Context) {
	order, err := h.service.Ack(c.Request.Context(), c.Param("id"), CurrentActor(c))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) RecentEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	events, err := h.service.RecentEvents(c.Request.Context(), limit, CurrentActor(c))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	if events == nil {
		events = []domain.OrderEvent{}
	}
	OKResponse(c, http.StatusOK, gin.H{"events": events})
}

func (h *OrderHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "orders"})
}
