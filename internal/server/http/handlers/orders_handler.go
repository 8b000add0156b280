package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

// OrderHandler manages order and product endpoints.
type OrderHandler struct {
	facade  AccountFacade
	cookies middleware.SessionCookies
	now     func() time.Time
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade AccountFacade, cookies middleware.SessionCookies) *OrderHandler {
	return &OrderHandler{facade: facade, cookies: cookies, now: time.Now}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), currentToken(c))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), currentToken(c), c.Param("id"))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Products handles GET /api/products.
func (h *OrderHandler) Products(c *gin.Context) {
	products, err := h.facade.Products(c.Request.Context(), currentToken(c))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}

	response := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, h.toProductResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// Subscription handles GET /api/products/:id/subscription.
func (h *OrderHandler) Subscription(c *gin.Context) {
	product, err := h.facade.SubscriptionLink(c.Request.Context(), currentToken(c), c.Param("id"))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusOK, h.toProductResponse(*product))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        order.ID,
		PlanID:    order.PlanID,
		PlanName:  order.PlanName,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    string(order.Status),
		ProductID: order.ProductID,
		CreatedAt: order.CreatedAt,
	}
}

func (h *OrderHandler) toProductResponse(p model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		SubscriptionURL: p.SubscriptionURL,
		Active:          p.Active(h.now()),
	}
	if !p.BuyTime.IsZero() {
		buy := p.BuyTime
		resp.BuyTime = &buy
	}
	if !p.EndTime.IsZero() {
		end := p.EndTime
		resp.EndTime = &end
	}
	return resp
}
