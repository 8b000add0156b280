package backend

import (
	"context"
	"net/http"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// Orders lists orders of the current user.
func (c *HTTPClient) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var resp []orderResponse
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &resp); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(resp))
	for _, o := range resp {
		orders = append(orders, o.toModel())
	}
	return orders, nil
}

// Order fetches a single order.
func (c *HTTPClient) Order(ctx context.Context, token, id string) (*model.Order, error) {
	p, err := resource("/orders", id)
	if err != nil {
		return nil, err
	}
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, p, token, nil, &resp); err != nil {
		return nil, err
	}
	order := resp.toModel()
	return &order, nil
}

// Products lists provisioned subscriptions.
func (c *HTTPClient) Products(ctx context.Context, token string) ([]model.Product, error) {
	var resp []productResponse
	if err := c.do(ctx, http.MethodGet, "/products", token, nil, &resp); err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(resp))
	for _, p := range resp {
		products = append(products, p.toModel())
	}
	return products, nil
}

// Tickets lists support tickets.
func (c *HTTPClient) Tickets(ctx context.Context, token string) ([]model.Ticket, error) {
	var resp []ticketResponse
	if err := c.do(ctx, http.MethodGet, "/tickets", token, nil, &resp); err != nil {
		return nil, err
	}
	tickets := make([]model.Ticket, 0, len(resp))
	for _, t := range resp {
		tickets = append(tickets, t.toModel())
	}
	return tickets, nil
}

// Ticket fetches a ticket with its messages.
func (c *HTTPClient) Ticket(ctx context.Context, token, id string) (*model.Ticket, error) {
	p, err := resource("/tickets", id)
	if err != nil {
		return nil, err
	}
	var resp ticketResponse
	if err := c.do(ctx, http.MethodGet, p, token, nil, &resp); err != nil {
		return nil, err
	}
	ticket := resp.toModel()
	return &ticket, nil
}

// CreateTicket opens a ticket.
func (c *HTTPClient) CreateTicket(ctx context.Context, token, subject, body string) (*model.Ticket, error) {
	var resp ticketResponse
	if err := c.do(ctx, http.MethodPost, "/tickets", token, ticketRequest{Subject: subject, Body: body}, &resp); err != nil {
		return nil, err
	}
	ticket := resp.toModel()
	return &ticket, nil
}

// ReplyTicket appends a message to a ticket.
func (c *HTTPClient) ReplyTicket(ctx context.Context, token, id, body string) (*model.Ticket, error) {
	p, err := resource("/tickets", id, "messages")
	if err != nil {
		return nil, err
	}
	var resp ticketResponse
	if err := c.do(ctx, http.MethodPost, p, token, ticketRequest{Body: body}, &resp); err != nil {
		return nil, err
	}
	ticket := resp.toModel()
	return &ticket, nil
}
