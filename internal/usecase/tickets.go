package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

const (
	maxSubjectLen = 200
	maxBodyLen    = 5000
)

// TicketUseCase manages support tickets.
type TicketUseCase struct {
	backend SupportBackend
}

// NewTicketUseCase constructs TicketUseCase.
func NewTicketUseCase(backend SupportBackend) *TicketUseCase {
	return &TicketUseCase{backend: backend}
}

// List returns tickets of the user.
func (u *TicketUseCase) List(ctx context.Context, token string) ([]model.Ticket, error) {
	return u.backend.Tickets(ctx, token)
}

// Get returns a ticket with its messages.
func (u *TicketUseCase) Get(ctx context.Context, token, id string) (*model.Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.backend.Ticket(ctx, token, id)
}

// Create opens a ticket. Subject and body are required.
func (u *TicketUseCase) Create(ctx context.Context, token, subject, body string) (*model.Ticket, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	if !validText(subject, maxSubjectLen) || !validText(body, maxBodyLen) {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.backend.CreateTicket(ctx, token, subject, body)
}

// Reply appends a message to a ticket.
func (u *TicketUseCase) Reply(ctx context.Context, token, id, body string) (*model.Ticket, error) {
	body = strings.TrimSpace(body)
	if strings.TrimSpace(id) == "" || !validText(body, maxBodyLen) {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.backend.ReplyTicket(ctx, token, id, body)
}

func validText(s string, max int) bool {
	return s != "" && utf8.RuneCountInString(s) <= max
}
