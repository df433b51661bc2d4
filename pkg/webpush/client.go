package webpush

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// StatusGone is the transport signal that an endpoint is permanently dead.
// Callers use it to deactivate the owning subscription.
const StatusGone = http.StatusGone

var (
	errVAPIDKeysRequired = errors.New("vapid public and private keys are required")
	errLoggerRequired    = errors.New("webpush logger is required")
)

// Destination addresses one push endpoint together with its crypto keys.
type Destination struct {
	Endpoint  string
	P256dhKey string
	AuthKey   string
}

// Sender is the delivery abstraction the dispatcher depends on. The returned
// status is the HTTP-status-like code reported by the push service.
type Sender interface {
	Send(ctx context.Context, dest Destination, payload []byte) (status int, err error)
}

// Client delivers Web Push messages signed with the configured VAPID keys.
type Client struct {
	publicKey  string
	privateKey string
	subscriber string
	ttlSeconds int
	logger     *logger.Logger
}

// NewClient validates the VAPID configuration and builds the push client.
func NewClient(ctx context.Context, cfg config.PushConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	publicKey := strings.TrimSpace(cfg.VAPIDPublicKey)
	privateKey := strings.TrimSpace(cfg.VAPIDPrivateKey)
	if publicKey == "" || privateKey == "" {
		return nil, errVAPIDKeysRequired
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	c := &Client{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: cfg.Subject,
		ttlSeconds: int(ttl / time.Second),
		logger:     logg,
	}

	logg.Info(ctx, "webpush client initialized")
	return c, nil
}

// Send pushes one payload to one destination. A non-2xx status from the push
// service is returned alongside an error so the caller can classify it.
func (c *Client) Send(ctx context.Context, dest Destination, payload []byte) (int, error) {
	sub := &wp.Subscription{
		Endpoint: dest.Endpoint,
		Keys: wp.Keys{
			P256dh: dest.P256dhKey,
			Auth:   dest.AuthKey,
		},
	}

	resp, err := wp.SendNotificationWithContext(ctx, payload, sub, &wp.Options{
		Subscriber:      c.subscriber,
		VAPIDPublicKey:  c.publicKey,
		VAPIDPrivateKey: c.privateKey,
		TTL:             c.ttlSeconds,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return resp.StatusCode, fmt.Errorf("push failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
}
