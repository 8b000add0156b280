package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

// CatalogHandler serves plans and payment checkout.
type CatalogHandler struct {
	facade  CatalogFacade
	cookies middleware.SessionCookies
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade, cookies middleware.SessionCookies) *CatalogHandler {
	return &CatalogHandler{facade: facade, cookies: cookies}
}

// Plans handles GET /api/plans.
func (h *CatalogHandler) Plans(c *gin.Context) {
	plans, err := h.facade.Plans(c.Request.Context())
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	resp := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, dto.PlanResponse{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price,
			Currency:     p.Currency,
			DurationDays: p.DurationDays,
			TrafficGB:    p.TrafficGB,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Checkout handles POST /api/payments/checkout.
func (h *CatalogHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	session, err := h.facade.Checkout(c.Request.Context(), CurrentIdentity(c), req.PlanID)
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}
