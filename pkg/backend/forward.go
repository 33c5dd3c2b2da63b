package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"hermod-hq/hermod/pkg/telemetry/metrics"
)

// ForwarderConfig bounds the retry loop of a Forwarder.
type ForwarderConfig struct {
	// RequestTimeout bounds a single attempt. It must exceed the backend's
	// own worst-case processing time so the gateway never times out a
	// request the backend is still working on.
	RequestTimeout time.Duration

	// MaxAttempts is the number of attempts before the forward fails.
	MaxAttempts int

	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration
}

// Forwarder relays raw request envelopes to the primary backend address.
//
// Only connection-establishment failures are retried: the dominant transient
// failure mode is the backend being mid-reload, which manifests as connection
// refusal. A response that started transmitting and then broke is terminal.
type Forwarder struct {
	address string
	client  *http.Client
	config  ForwarderConfig
	metrics *metrics.Collector
}

// NewForwarder creates a forwarder for the given backend address. mc may be
// nil.
func NewForwarder(address string, cfg ForwarderConfig, mc *metrics.Collector) *Forwarder {
	return &Forwarder{
		address: address,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		config:  cfg,
		metrics: mc,
	}
}

// Address returns the backend address this forwarder targets.
func (f *Forwarder) Address() string {
	return f.address
}

// Forward relays body to the backend and returns the raw response body
// unmodified. On sustained connection failure it returns *UnreachableError;
// any other failure is surfaced immediately without further attempts.
func (f *Forwarder) Forward(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		f.metrics.RecordForwardAttempt()

		out, err := f.post(ctx, body)
		if err == nil {
			if attempt > 1 {
				slog.Info("backend responded after retries",
					"address", f.address,
					"attempts", attempt,
				)
			}
			return out, nil
		}

		if !isRetryable(err) {
			return nil, fmt.Errorf("request to backend at %s failed: %w", f.address, err)
		}

		lastErr = err
		slog.Debug("backend unreachable",
			"address", f.address,
			"attempt", attempt,
			"max_attempts", f.config.MaxAttempts,
			"error", err,
		)

		if attempt == f.config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.config.RetryDelay):
		}
	}

	f.metrics.RecordForwardFailure()
	return nil, &UnreachableError{
		Address:  f.address,
		Attempts: f.config.MaxAttempts,
		Cause:    lastErr,
	}
}

// post performs a single attempt. The response body is fully read here so
// that a mid-delivery break surfaces as this attempt's error rather than
// leaking to the caller.
func (f *Forwarder) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+f.address+"/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("response broke mid-delivery: %w", err)
	}
	return out, nil
}

// isRetryable reports whether err is a connection-establishment failure.
// Dial errors, DNS failures, and unreachable-host conditions are the reload
// gap signature; everything else is terminal.
func isRetryable(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
