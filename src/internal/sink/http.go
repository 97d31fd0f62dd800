// FILE: logroute/src/internal/sink/http.go
package sink

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
	"logroute/src/internal/version"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp"
)

const (
	defaultHTTPTimeout     = 5 * time.Second
	defaultHTTPContentType = "text/plain; charset=utf-8"
	tokenLifetime          = 5 * time.Minute
	tokenRefreshMargin     = time.Minute
	tokenIssuer            = "logroute"
)

// HTTPSink posts each line to a remote endpoint. One attempt per event.
type HTTPSink struct {
	name        string
	url         string
	contentType string
	authSecret  string
	timeout     time.Duration

	mu     sync.Mutex
	client *fasthttp.Client
	dial   fasthttp.DialFunc

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time

	started atomic.Bool
}

// NewHTTPSink creates a sink posting each line to url.
func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{
		name:        "http",
		url:         url,
		contentType: defaultHTTPContentType,
		timeout:     defaultHTTPTimeout,
	}
}

func (h *HTTPSink) Name() string        { return h.name }
func (h *HTTPSink) SetName(name string) { h.name = name }
func (h *HTTPSink) Key() string         { return "http:" + h.url }
func (h *HTTPSink) IsStarted() bool     { return h.started.Load() }

// SetURL, SetContentType and SetAuthSecret are only valid before Init.
// A non-empty secret signs each request with an HS256 bearer token.
func (h *HTTPSink) SetURL(url string)           { h.url = url }
func (h *HTTPSink) SetContentType(ct string)    { h.contentType = ct }
func (h *HTTPSink) SetAuthSecret(secret string) { h.authSecret = secret }

// SetTimeoutMS sets the per-request timeout. Non-positive values keep the default.
func (h *HTTPSink) SetTimeoutMS(ms int) {
	if ms > 0 {
		h.timeout = time.Duration(ms) * time.Millisecond
	}
}

func (h *HTTPSink) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started.Load() {
		return nil
	}
	if h.url == "" {
		err := core.WithSinkIO(fmt.Errorf("url is empty"), h.name, "init")
		diag.Error("http_sink", "Cannot start HTTP sink", "sink", h.name, "error", err)
		return err
	}

	h.client = &fasthttp.Client{
		MaxConnsPerHost:               10,
		MaxIdleConnDuration:           10 * time.Second,
		ReadTimeout:                   h.timeout,
		WriteTimeout:                  h.timeout,
		DisableHeaderNamesNormalizing: true,
		Dial:                          h.dial,
	}
	h.started.Store(true)
	return nil
}

func (h *HTTPSink) Write(ev *core.Event) {
	h.mu.Lock()
	client := h.client
	h.mu.Unlock()

	if client == nil {
		diag.Error("http_sink", "Write on sink that is not started", "sink", h.name)
		return
	}

	if err := h.post(client, []byte(lineOf(ev))); err != nil {
		diag.Error("http_sink", "Failed to deliver event",
			"sink", h.name,
			"url", h.url,
			"error", core.WithSinkIO(err, h.name, "write"))
	}
}

func (h *HTTPSink) post(client *fasthttp.Client, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(h.contentType)
	req.Header.Set("User-Agent", fmt.Sprintf("logroute/%s", version.Short()))
	req.SetBody(body)

	if h.authSecret != "" {
		token, err := h.bearerToken()
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := client.DoTimeout(req, resp, h.timeout); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return fmt.Errorf("server returned status %d: %s", status, resp.Body())
	}
	return nil
}

// bearerToken returns a cached HS256 token, re-signing near expiry.
func (h *HTTPSink) bearerToken() (string, error) {
	h.tokenMu.Lock()
	defer h.tokenMu.Unlock()

	now := time.Now()
	if h.token != "" && now.Add(tokenRefreshMargin).Before(h.tokenExp) {
		return h.token, nil
	}

	exp := now.Add(tokenLifetime)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   h.name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.authSecret))
	if err != nil {
		return "", err
	}

	h.token = signed
	h.tokenExp = exp
	return signed, nil
}

func (h *HTTPSink) Flush() error {
	return nil
}

func (h *HTTPSink) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started.Store(false)
	if h.client != nil {
		h.client.CloseIdleConnections()
		h.client = nil
	}
	return nil
}
