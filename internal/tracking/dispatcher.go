package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/observability"
)

// DefaultTimeout is the default connect and read timeout for deliveries.
const DefaultTimeout = 10 * time.Second

// ContentType is sent with every click event.
const ContentType = "application/json; charset=UTF-8"

// maxErrorBody bounds how much of a failed response is kept for logs.
const maxErrorBody = 1024

// Executor runs callbacks on the caller's scheduling context.
type Executor interface {
	Post(fn func()) bool
}

// Result is the outcome of one delivery.
type Result struct {
	Event      ClickEvent
	StatusCode int
	Err        error // nil on success, otherwise a *DeliveryError or ErrClosed
	Duration   time.Duration
}

// OK reports whether the collector accepted the event.
func (r Result) OK() bool { return r.Err == nil }

// Callback receives the outcome of a delivery.
type Callback func(Result)

// Options configures a Dispatcher.
type Options struct {
	Endpoint       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// Client overrides the HTTP client built from the timeouts.
	Client *http.Client
	// Executor receives callbacks. When nil, callbacks run on the delivery goroutine.
	Executor Executor
	Logger   *zap.Logger
	Metrics  observability.MetricsRegistry
}

// Dispatcher posts click events to the collector. Every Track call runs on its
// own goroutine, so submissions never block and deliveries complete in no
// particular order. Failed deliveries are reported once and never retried.
type Dispatcher struct {
	endpoint   string
	httpClient *http.Client
	executor   Executor
	logger     *zap.Logger
	metrics    observability.MetricsRegistry

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher posting to opts.Endpoint.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, ErrNoEndpoint
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient(opts.ConnectTimeout, opts.ReadTimeout)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewNoOpRegistry()
	}
	return &Dispatcher{
		endpoint:   opts.Endpoint,
		httpClient: opts.Client,
		executor:   opts.Executor,
		logger:     opts.Logger.Named("dispatcher"),
		metrics:    opts.Metrics,
	}, nil
}

// NewHTTPClient builds a client whose dialer enforces connectTimeout and whose
// transport waits at most readTimeout for response headers. Client.Timeout is a
// hard cap of connectTimeout+readTimeout on the whole exchange, including
// reading the response body; there is no separate body read timeout.
func NewHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   connectTimeout + readTimeout,
	}
}

// Endpoint returns the collector URL.
func (d *Dispatcher) Endpoint() string { return d.endpoint }

// Track queues event for delivery and returns immediately. cb may be nil.
func (d *Dispatcher) Track(event ClickEvent, cb Callback) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("click dropped after close", zap.String("ad_id", event.AdID))
		d.metrics.IncrementClickDeliveries("dropped")
		d.deliverResult(cb, Result{Event: event, Err: ErrClosed})
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.deliverResult(cb, d.send(event))
	}()
}

// Wait blocks until every delivery started so far has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Close stops accepting events, waits for in-flight deliveries and releases
// idle connections. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
	d.httpClient.CloseIdleConnections()
}

func (d *Dispatcher) deliverResult(cb Callback, res Result) {
	if cb == nil {
		return
	}
	if d.executor == nil || !d.executor.Post(func() { cb(res) }) {
		cb(res)
	}
}

// send performs the single POST for event and classifies the outcome.
func (d *Dispatcher) send(event ClickEvent) (res Result) {
	start := time.Now()
	res.Event = event
	outcome := "success"
	defer func() {
		res.Duration = time.Since(start)
		d.metrics.RecordClickDeliveryLatency(res.Duration)
		d.metrics.IncrementClickDeliveries(outcome)
		if res.Err != nil {
			d.logger.Warn("click event delivery failed",
				zap.String("ad_id", event.AdID),
				zap.String("pattern", event.AdditionalData.Pattern),
				zap.Int("status", res.StatusCode),
				zap.Error(res.Err),
			)
			return
		}
		d.logger.Debug("click event delivered",
			zap.String("ad_id", event.AdID),
			zap.Int("status", res.StatusCode),
			zap.Duration("duration", res.Duration),
		)
	}()

	body, err := json.Marshal(event)
	if err != nil {
		outcome = "failure"
		res.Err = &DeliveryError{Err: fmt.Errorf("marshal event: %w", err)}
		return res
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		outcome = "failure"
		res.Err = &DeliveryError{Err: fmt.Errorf("create request: %w", err)}
		return res
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		outcome = "failure"
		res.Err = &DeliveryError{Err: fmt.Errorf("http request: %w", err)}
		return res
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "failure"
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		res.Err = &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
		return res
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return res
}
