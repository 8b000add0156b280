package model

import "time"

// Ticket is a support conversation.
type Ticket struct {
	ID        string
	Subject   string
	Status    string
	Messages  []TicketMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketMessage is a single message inside a ticket.
type TicketMessage struct {
	Author    string
	Body      string
	CreatedAt time.Time
}
