package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"mosaicchain/native/gallery"
)

// EventType represents the logical webhook topic.
type EventType string

const (
	// EventTickSettled is sent after a reward tick has been committed.
	EventTickSettled EventType = "gallery.tick.settled"

	defaultMaxAttempts = 5
	defaultMinBackoff  = 2 * time.Second
	defaultMaxBackoff  = 30 * time.Second
)

// Winner is one rewarded mosaic of a tick.
type Winner struct {
	MosaicID uint64 `json:"mosaicId"`
	Place    int    `json:"place"`
	Grade    int64  `json:"grade"`
	Amount   int64  `json:"amount"`
}

// TickPayload describes the webhook body for settled ticks.
type TickPayload struct {
	Type       EventType `json:"type"`
	Community  string    `json:"community"`
	TickAt     time.Time `json:"tickAt"`
	Amount     int64     `json:"amount"`
	Remainder  int64     `json:"remainder"`
	Unclaimed  int64     `json:"unclaimed"`
	Winners    []Winner  `json:"winners"`
	DeliveryID string    `json:"deliveryId"`
}

// NewTickPayload converts a committed tick into its webhook body.
func NewTickPayload(t *gallery.TickResult) TickPayload {
	p := TickPayload{
		Type:      EventTickSettled,
		Community: t.Symbol,
		TickAt:    time.Unix(t.At, 0).UTC(),
		Amount:    t.Amount,
		Remainder: t.Remainder,
		Unclaimed: t.Unclaimed,
		Winners:   make([]Winner, 0, len(t.Allocations)),
	}
	for _, a := range t.Allocations {
		p.Winners = append(p.Winners, Winner{MosaicID: a.MosaicID, Place: a.Place, Grade: a.Grade, Amount: a.Amount})
	}
	p.DeliveryID = fmt.Sprintf("tick-%s-%d", t.Symbol, t.At)
	return p
}

// Dispatcher orchestrates webhook deliveries with retry and exponential backoff.
type Dispatcher struct {
	endpoint    string
	secret      []byte
	client      *http.Client
	logger      *slog.Logger
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration

	ctx        context.Context
	cancel     context.CancelFunc
	queue      chan delivery
	wg         sync.WaitGroup
	deliveries metric.Int64Counter
}

type delivery struct {
	eventType EventType
	id        string
	body      []byte
}

// Option mutates dispatcher configuration.
type Option func(*Dispatcher)

// WithHTTPClient overrides the HTTP client used for deliveries.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithLogger reports abandoned deliveries to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRetryPolicy overrides the retry configuration.
func WithRetryPolicy(maxAttempts int, minBackoff, maxBackoff time.Duration) Option {
	return func(d *Dispatcher) {
		if maxAttempts > 0 {
			d.maxAttempts = maxAttempts
		}
		if minBackoff > 0 {
			d.minBackoff = minBackoff
		}
		if maxBackoff >= minBackoff && maxBackoff > 0 {
			d.maxBackoff = maxBackoff
		}
	}
}

// NewDispatcher constructs a dispatcher and spawns the worker goroutine.
func NewDispatcher(endpoint string, secret []byte, opts ...Option) (*Dispatcher, error) {
	endpoint = string(bytes.TrimSpace([]byte(endpoint)))
	if endpoint == "" {
		return nil, errors.New("webhook: endpoint required")
	}
	if len(secret) == 0 {
		return nil, errors.New("webhook: secret required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := &Dispatcher{
		endpoint:    endpoint,
		secret:      append([]byte(nil), secret...),
		client:      &http.Client{Timeout: 15 * time.Second},
		logger:      slog.Default(),
		maxAttempts: defaultMaxAttempts,
		minBackoff:  defaultMinBackoff,
		maxBackoff:  defaultMaxBackoff,
		ctx:         ctx,
		cancel:      cancel,
		queue:       make(chan delivery, 64),
		deliveries:  deliveryCounter(),
	}
	for _, opt := range opts {
		opt(dispatcher)
	}
	dispatcher.wg.Add(1)
	go dispatcher.worker()
	return dispatcher, nil
}

// Close stops the dispatcher and waits for inflight deliveries to complete.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.cancel()
	d.wg.Wait()
}

// NotifyTick queues a settled tick. It never blocks the caller: when the
// queue is full the notification is dropped and logged.
func (d *Dispatcher) NotifyTick(t *gallery.TickResult) {
	if d == nil || t == nil {
		return
	}
	payload := NewTickPayload(t)
	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("webhook: encode tick", "community", t.Symbol, "error", err)
		return
	}
	select {
	case d.queue <- delivery{eventType: payload.Type, id: payload.DeliveryID, body: data}:
	case <-d.ctx.Done():
	default:
		d.record("dropped")
		d.logger.Warn("webhook: queue full, tick dropped", "community", t.Symbol, "delivery", payload.DeliveryID)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.queue:
			d.process(job)
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) process(job delivery) {
	attempt := 0
	backoff := d.minBackoff
	for {
		attempt++
		ctx, cancel := context.WithTimeout(d.ctx, d.client.Timeout)
		err := d.send(ctx, job)
		cancel()
		if err == nil {
			d.record("delivered")
			return
		}
		if attempt >= d.maxAttempts {
			d.record("abandoned")
			d.logger.Error("webhook: delivery abandoned", "delivery", job.id, "attempts", attempt, "error", err)
			return
		}
		select {
		case <-time.After(backoff):
		case <-d.ctx.Done():
			return
		}
		backoff = nextBackoff(backoff, d.maxBackoff)
	}
}

func (d *Dispatcher) send(ctx context.Context, job delivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(job.body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Mosaic-Event", string(job.eventType))
	req.Header.Set("X-Mosaic-Delivery", job.id)
	req.Header.Set("X-Mosaic-Signature", Sign(d.secret, job.body))
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook: delivery failed with status %d", resp.StatusCode)
}

func deliveryCounter() metric.Int64Counter {
	meter := otel.GetMeterProvider().Meter("mosaicchain/webhooks")
	counter, err := meter.Int64Counter("mosaic.webhooks.deliveries",
		metric.WithDescription("Tick webhook deliveries by result."))
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter("mosaicchain/webhooks").Int64Counter("mosaic.webhooks.deliveries")
	}
	return counter
}

func (d *Dispatcher) record(result string) {
	d.deliveries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max || next < current {
		return max
	}
	return next
}
