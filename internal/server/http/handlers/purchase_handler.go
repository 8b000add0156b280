package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

// PurchaseHandler manages purchase endpoints.
type PurchaseHandler struct {
	facade  PurchaseFacade
	cookies middleware.SessionCookies
}

// NewPurchaseHandler constructs PurchaseHandler.
func NewPurchaseHandler(facade PurchaseFacade, cookies middleware.SessionCookies) *PurchaseHandler {
	return &PurchaseHandler{facade: facade, cookies: cookies}
}

// Purchase handles POST /api/subscriptions/purchase. With ?wait=true the
// response is held until provisioning finishes or polling gives up.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	wait, _ := strconv.ParseBool(c.Query("wait"))

	purchase := h.facade.Purchase
	if wait {
		purchase = h.facade.PurchaseAndWait
	}
	result, err := purchase(c.Request.Context(), CurrentOwner(c), model.PurchaseRequest{
		PlanID:    req.PlanID,
		Months:    req.Months,
		PromoCode: req.PromoCode,
	})
	h.respond(c, result, err, http.StatusCreated)
}

// Status handles GET /api/purchases/:id.
func (h *PurchaseHandler) Status(c *gin.Context) {
	result, err := h.facade.PurchaseStatus(c.Request.Context(), CurrentIdentity(c).UserID, c.Param("id"))
	h.respond(c, result, err, http.StatusOK)
}

// Refresh handles POST /api/purchases/:id/refresh.
func (h *PurchaseHandler) Refresh(c *gin.Context) {
	result, err := h.facade.RefreshPurchase(c.Request.Context(), CurrentOwner(c), c.Param("id"))
	h.respond(c, result, err, http.StatusOK)
}

// List handles GET /api/purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	results, err := h.facade.Purchases(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	resp := make([]dto.PurchaseResponse, 0, len(results))
	for _, r := range results {
		resp = append(resp, toPurchaseResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// respond writes a purchase result. A poll timeout is not a failure: the
// purchase exists and the client is told to refresh later.
func (h *PurchaseHandler) respond(c *gin.Context, result model.PurchaseResult, err error, okStatus int) {
	switch {
	case err == nil:
		c.JSON(okStatus, toPurchaseResponse(result))
	case errors.Is(err, domainErrors.ErrPollTimeout) && result.OrderID != "":
		resp := toPurchaseResponse(result)
		resp.Message = domainErrors.UserMessage(err)
		c.JSON(http.StatusAccepted, resp)
	default:
		respondError(c, h.cookies, err)
	}
}

func toPurchaseResponse(r model.PurchaseResult) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		OrderID:         r.OrderID,
		Status:          string(r.Status),
		ProductID:       r.ProductID,
		SubscriptionURL: r.SubscriptionURL,
		Attempts:        r.Attempts,
		Polling:         r.Polling,
		TimedOut:        r.TimedOut,
		LastError:       r.LastError,
	}
}
