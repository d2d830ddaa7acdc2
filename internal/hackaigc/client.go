package hackaigc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hackaigc-api/internal/config"
	"hackaigc-api/internal/metrics"
)

const (
	defaultBaseURL = "https://chat.hackaigc.com"
	chatPath       = "/api/chat"
	imagePath      = "/api/image"
	defaultUA      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// Upstream error bodies on the image path are truncated before they reach
	// clients; the backend sometimes returns whole HTML pages on failure.
	imageErrorBodyLimit = 100
)

// ErrEmptyImage reports a 2xx image response with a zero-length body.
var ErrEmptyImage = errors.New("Empty image received")

// UpstreamError carries the upstream HTTP status so handlers can mirror it.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Upstream Error (%d): %s", e.Status, e.Body)
}

// Client talks to the opaque chat.hackaigc.com backend with a synthesized
// guest identity per call.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	rnd        RandSource
}

func NewClient(cfg *config.Config) *Client {
	timeout := 300 * time.Second
	if cfg != nil && cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		rnd:        globalRand{},
	}
}

func (c *Client) baseURL() string {
	if c.cfg != nil && strings.TrimSpace(c.cfg.UpstreamURL) != "" {
		return strings.TrimRight(strings.TrimSpace(c.cfg.UpstreamURL), "/")
	}
	return defaultBaseURL
}

func (c *Client) userAgent() string {
	if c.cfg != nil && strings.TrimSpace(c.cfg.UserAgent) != "" {
		return strings.TrimSpace(c.cfg.UserAgent)
	}
	return defaultUA
}

// headers builds the disguise header set the upstream expects. Advisory only:
// nothing here has a security role beyond being present and well-formed.
func (c *Client) headers(id GuestIdentity) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer anonymous_"+id.ID)
	h.Set("User-Agent", c.userAgent())
	h.Set("Origin", c.baseURL())
	h.Set("Referer", c.baseURL()+"/")
	h.Set("X-Forwarded-For", id.IP)
	h.Set("X-Real-IP", id.IP)
	return h
}

// DoChat posts one conversation to /api/chat and returns the raw streaming
// response for relay. The caller owns resp.Body. Non-2xx statuses come back as
// *UpstreamError with the full body text.
func (c *Client) DoChat(ctx context.Context, upstreamModel string, messages []ChatMessage, temperature float64) (*http.Response, error) {
	id := SynthesizeGuestIdentity(c.rnd)
	payload := upstreamChatPayload{
		UserID:      id.ID,
		UserLevel:   "free",
		Model:       upstreamModel,
		Messages:    messages,
		Temperature: temperature,
		DeviceID:    id.ID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = c.headers(id)

	resp, err := c.do("chat", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}

// DoImage posts a prompt to /api/image and returns the raw image bytes.
func (c *Client) DoImage(ctx context.Context, prompt string) ([]byte, error) {
	id := SynthesizeGuestIdentity(c.rnd)
	payload := upstreamImagePayload{
		Prompt:    prompt,
		UserID:    id.ID,
		DeviceID:  id.ID,
		UserLevel: "free",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+imagePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = c.headers(id)
	req.Header.Set("Accept", "image/png,image/jpeg,*/*")

	resp, err := c.do("image", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		msg := string(raw)
		if len(msg) > imageErrorBodyLimit {
			msg = msg[:imageErrorBodyLimit]
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Body: msg}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}

func (c *Client) do(endpoint string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}
