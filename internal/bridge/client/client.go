package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webbridge/internal/shared/paths"
	"github.com/GriffinCanCode/webbridge/internal/shared/types"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

var (
	ErrStatus         = errors.New("client: unexpected response status")
	ErrUnknownBinding = errors.New("client: binding not in window manifest")
)

// StatusError is a non-2xx host response.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %s: %d", ErrStatus, e.Method, e.URL, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Config defines host connection settings
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	UserAgent        string
	// HandshakeTimeout bounds the WebSocket upgrade.
	HandshakeTimeout time.Duration
}

// DefaultConfig returns settings for a host at baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		RetryCount:       3,
		RetryWaitTime:    200 * time.Millisecond,
		RetryMaxWaitTime: 2 * time.Second,
		UserAgent:        "webbridge-client/1.0",
		HandshakeTimeout: 10 * time.Second,
	}
}

// Client talks to one bridge host.
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
	dialer  *websocket.Dialer
	base    *url.URL
	logger  *zap.Logger
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", cfg.BaseURL)
	}

	// Pooled transport shared by resty
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(base.String()).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.RetryMaxWaitTime).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)
	restyClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})

	breaker := resilience.New("bridge-host", resilience.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors are answers, not host failures.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || (errors.As(err, &se) && se.Code < http.StatusInternalServerError)
		},
	})

	return &Client{
		resty:   restyClient,
		breaker: breaker,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		base:   base,
		logger: logger,
	}, nil
}

// Windows lists the host's opened windows.
func (c *Client) Windows(ctx context.Context) (*types.WindowList, error) {
	var list types.WindowList
	if err := c.getJSON(ctx, paths.Windows, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Manifest fetches the binding surface of a window.
func (c *Client) Manifest(ctx context.Context, window string) (*types.Manifest, error) {
	var m types.Manifest
	if err := c.getJSON(ctx, paths.For(window).Manifest(), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// BridgeScript fetches the runtime, transport and stubs a browser page of
// window receives.
func (c *Client) BridgeScript(ctx context.Context, window string) (string, error) {
	resp, err := c.execute(ctx, func(ctx context.Context) (*resty.Response, error) {
		return c.resty.R().
			SetContext(ctx).
			SetHeader("Accept", "application/javascript").
			Get(paths.For(window).Script())
	})
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

// Dial opens the bridge WebSocket at path on the host.
func (c *Client) Dial(ctx context.Context, path string) (*transport.WSConn, error) {
	u := *c.base
	u.Scheme = "ws"
	if c.base.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(c.base.Path, "/") + path

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial %s: %d", ErrStatus, path, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	return transport.NewWSConn(conn), nil
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	_, err := c.execute(ctx, func(ctx context.Context) (*resty.Response, error) {
		return c.resty.R().SetContext(ctx).SetResult(result).Get(path)
	})
	return err
}

// execute runs fn through the breaker, treating non-2xx responses as
// failures.
func (c *Client) execute(ctx context.Context, fn func(context.Context) (*resty.Response, error)) (*resty.Response, error) {
	out, err := c.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		resp, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, &StatusError{Method: resp.Request.Method, URL: resp.Request.URL, Code: resp.StatusCode()}
		}
		return resp, nil
	})
	resp, _ := out.(*resty.Response)
	if err != nil {
		c.logger.Debug("Host request failed", zap.Error(err))
		return resp, err
	}
	return resp, nil
}
