package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

// TicketHandler manages support ticket endpoints.
type TicketHandler struct {
	facade  SupportFacade
	cookies middleware.SessionCookies
}

// NewTicketHandler constructs TicketHandler.
func NewTicketHandler(facade SupportFacade, cookies middleware.SessionCookies) *TicketHandler {
	return &TicketHandler{facade: facade, cookies: cookies}
}

// List handles GET /api/tickets.
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.facade.Tickets(c.Request.Context(), currentToken(c))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	resp := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, toTicketResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/tickets/:id.
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.facade.Ticket(c.Request.Context(), currentToken(c), c.Param("id"))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(*ticket))
}

// Create handles POST /api/tickets.
func (h *TicketHandler) Create(c *gin.Context) {
	var req dto.TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ticket, err := h.facade.CreateTicket(c.Request.Context(), currentToken(c), req.Subject, req.Body)
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusCreated, toTicketResponse(*ticket))
}

// Reply handles POST /api/tickets/:id/messages.
func (h *TicketHandler) Reply(c *gin.Context) {
	var req dto.TicketReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ticket, err := h.facade.ReplyTicket(c.Request.Context(), currentToken(c), c.Param("id"), req.Body)
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(*ticket))
}

func toTicketResponse(t model.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:        t.ID,
		Subject:   t.Subject,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, m := range t.Messages {
		resp.Messages = append(resp.Messages, dto.TicketMessageResponse{Author: m.Author, Body: m.Body, CreatedAt: m.CreatedAt})
	}
	return resp
}
