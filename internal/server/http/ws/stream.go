package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/poller"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 5 * time.Second
	readLimit           = 1024
)

// Watcher streams provisioning observations of a purchase.
type Watcher interface {
	WatchPurchase(ctx context.Context, owner model.Owner, orderID string, fn func(poller.Attempt)) (model.PurchaseResult, error)
}

// StatusStream pushes purchase status frames over a websocket.
type StatusStream struct {
	watcher      Watcher
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	logger       *slog.Logger
}

// NewStatusStream constructs StatusStream. Origins are checked against allowed;
// an empty list accepts same-origin requests only.
func NewStatusStream(watcher Watcher, allowed []string, logger *slog.Logger) *StatusStream {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}
	return &StatusStream{
		watcher: watcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := origins[origin]; ok {
					return true
				}
				return origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
		pingInterval: defaultPingInterval,
		logger:       logger,
	}
}

// Serve handles GET /api/purchases/:id/stream.
func (s *StatusStream) Serve(c *gin.Context) {
	val, _ := c.Get(middleware.IdentityContextKey)
	identity, _ := val.(model.Identity)
	owner := model.Owner{UserID: identity.UserID, Token: c.GetString(middleware.TokenContextKey)}
	orderID := c.Param("id")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "status stream upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var wmu sync.Mutex
	write := func(fn func() error) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return fn()
	}

	go s.readLoop(conn, cancel)
	go s.pingLoop(ctx, conn, write, cancel)

	result, err := s.watcher.WatchPurchase(ctx, owner, orderID, func(a poller.Attempt) {
		frame := dto.StatusFrame{
			OrderID:         a.Observation.OrderID,
			Status:          string(a.Observation.Status),
			Attempt:         a.Number,
			SubscriptionURL: a.Observation.SubscriptionURL,
		}
		if frame.OrderID == "" {
			frame.OrderID = orderID
		}
		if werr := write(func() error { return conn.WriteJSON(frame) }); werr != nil {
			cancel()
		}
	})

	closeCode, closeText := websocket.CloseNormalClosure, ""
	switch {
	case ctx.Err() != nil:
		return
	case err == nil:
	case errors.Is(err, domainErrors.ErrPollTimeout):
		timedOut := dto.StatusFrame{
			OrderID:         orderID,
			Status:          string(result.Status),
			Attempt:         result.Attempts,
			SubscriptionURL: result.SubscriptionURL,
			TimedOut:        true,
		}
		_ = write(func() error { return conn.WriteJSON(timedOut) })
	default:
		s.logger.WarnContext(ctx, "status stream stopped", slog.String("order_id", orderID), slog.String("error", err.Error()))
		_ = write(func() error {
			return conn.WriteJSON(dto.StatusFrame{OrderID: orderID, Status: string(result.Status), Error: domainErrors.UserMessage(err)})
		})
		closeCode, closeText = websocket.CloseInternalServerErr, "status check failed"
		if errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, domainErrors.ErrUnauthorized) {
			closeCode, closeText = websocket.ClosePolicyViolation, domainErrors.UserMessage(err)
		}
	}

	msg := websocket.FormatCloseMessage(closeCode, closeText)
	_ = write(func() error { return conn.WriteMessage(websocket.CloseMessage, msg) })
}

// readLoop drains client frames so that pongs and close frames are processed.
func (s *StatusStream) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(readLimit)
	wait := 2 * s.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *StatusStream) pingLoop(ctx context.Context, conn *websocket.Conn, write func(func() error) error, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping := func() error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}
			if err := write(ping); err != nil {
				cancel()
				return
			}
		}
	}
}
