package model

// CheckoutRequest describes a hosted payment page to create.
type CheckoutRequest struct {
	UserID string
	Email  string
	Plan   Plan
}

// CheckoutSession is a hosted payment page.
type CheckoutSession struct {
	ID  string
	URL string
}
