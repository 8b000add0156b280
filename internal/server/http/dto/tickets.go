package dto

import "time"

// TicketRequest opens a support ticket.
type TicketRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TicketReplyRequest appends a message to a ticket.
type TicketReplyRequest struct {
	Body string `json:"body"`
}

// TicketResponse describes a support ticket.
type TicketResponse struct {
	ID        string                  `json:"id"`
	Subject   string                  `json:"subject"`
	Status    string                  `json:"status"`
	Messages  []TicketMessageResponse `json:"messages,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// TicketMessageResponse is a single ticket message.
type TicketMessageResponse struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
