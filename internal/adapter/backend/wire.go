package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// flexID accepts identifiers encoded either as JSON strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// flexTime accepts RFC3339 strings and unix seconds.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*t = flexTime{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*t = flexTime(parsed)
		return nil
	}
	var secs int64
	if err := json.Unmarshal(data, &secs); err != nil {
		return err
	}
	*t = flexTime(time.Unix(secs, 0).UTC())
	return nil
}

func (t flexTime) Time() time.Time { return time.Time(t) }

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (r sessionResponse) toModel(now time.Time) *model.Session {
	s := &model.Session{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
	switch {
	case r.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(r.ExpiresAt, 0).UTC()
	case r.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second).UTC()
	}
	return s
}

type profileResponse struct {
	ID      flexID  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

func (r profileResponse) toModel() *model.Profile {
	return &model.Profile{ID: string(r.ID), Email: r.Email, Name: r.Name, Balance: r.Balance}
}

type planResponse struct {
	ID            flexID  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	DurationDays  int     `json:"duration_days"`
	TrafficGB     int     `json:"traffic_gb"`
	StripePriceID string  `json:"stripe_price_id"`
}

func (r planResponse) toModel() model.Plan {
	return model.Plan{
		ID:            string(r.ID),
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Currency:      r.Currency,
		DurationDays:  r.DurationDays,
		TrafficGB:     r.TrafficGB,
		StripePriceID: r.StripePriceID,
	}
}

type purchaseRequest struct {
	PlanID    string `json:"plan_id"`
	Months    int    `json:"months,omitempty"`
	PromoCode string `json:"promo_code,omitempty"`
}

type purchaseResponse struct {
	OrderID         flexID `json:"order_id"`
	Status          string `json:"status"`
	ProductID       flexID `json:"product_id"`
	SubscriptionURL string `json:"subscription_url"`
}

type statusResponse struct {
	OrderID         flexID `json:"order_id"`
	Status          string `json:"status"`
	IsCompleted     bool   `json:"is_completed"`
	IsFailed        bool   `json:"is_failed"`
	ProductID       flexID `json:"product_id"`
	SubscriptionURL string `json:"subscription_url"`
}

type orderResponse struct {
	ID        flexID   `json:"id"`
	PlanID    flexID   `json:"plan_id"`
	PlanName  string   `json:"plan_name"`
	Amount    float64  `json:"amount"`
	Currency  string   `json:"currency"`
	Status    string   `json:"status"`
	ProductID flexID   `json:"product_id"`
	CreatedAt flexTime `json:"created_at"`
	UpdatedAt flexTime `json:"updated_at"`
}

func (r orderResponse) toModel() model.Order {
	return model.Order{
		ID:        string(r.ID),
		PlanID:    string(r.PlanID),
		PlanName:  r.PlanName,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Status:    model.ParseOrderStatus(r.Status, false, false),
		ProductID: string(r.ProductID),
		CreatedAt: r.CreatedAt.Time(),
		UpdatedAt: r.UpdatedAt.Time(),
	}
}

type productResponse struct {
	ID              flexID   `json:"id"`
	ProductID       flexID   `json:"product_id"`
	Name            string   `json:"name"`
	SubscriptionURL string   `json:"subscription_url"`
	BuyTime         flexTime `json:"buy_time"`
	EndTime         flexTime `json:"end_time"`
}

func (r productResponse) toModel() model.Product {
	id := r.ID
	if id == "" {
		id = r.ProductID
	}
	return model.Product{
		ID:              string(id),
		Name:            r.Name,
		SubscriptionURL: r.SubscriptionURL,
		BuyTime:         r.BuyTime.Time(),
		EndTime:         r.EndTime.Time(),
	}
}

type ticketMessageResponse struct {
	Author    string   `json:"author"`
	Body      string   `json:"body"`
	CreatedAt flexTime `json:"created_at"`
}

type ticketResponse struct {
	ID        flexID                  `json:"id"`
	Subject   string                  `json:"subject"`
	Status    string                  `json:"status"`
	Messages  []ticketMessageResponse `json:"messages"`
	CreatedAt flexTime                `json:"created_at"`
	UpdatedAt flexTime                `json:"updated_at"`
}

func (r ticketResponse) toModel() model.Ticket {
	t := model.Ticket{
		ID:        string(r.ID),
		Subject:   r.Subject,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Time(),
		UpdatedAt: r.UpdatedAt.Time(),
	}
	for _, m := range r.Messages {
		t.Messages = append(t.Messages, model.TicketMessage{Author: m.Author, Body: m.Body, CreatedAt: m.CreatedAt.Time()})
	}
	return t
}

type ticketRequest struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}
