package test

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomOrderID returns a numeric id shaped like backend order ids.
func RandomOrderID() string {
	rngMu.Lock()
	defer rngMu.Unlock()
	return strconv.FormatInt(100000+rng.Int63n(900000), 10)
}

// RandomPurchase returns a pending purchase of userID under background
// tracking with fresh ids.
func RandomPurchase(userID string) model.Purchase {
	now := time.Now().UTC().Truncate(time.Second)
	return model.Purchase{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrderID:   RandomOrderID(),
		PlanID:    "basic",
		Status:    model.OrderStatusPending,
		Tracking:  model.TrackingActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
