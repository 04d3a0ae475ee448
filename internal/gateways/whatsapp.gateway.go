package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/rumahkitanet/wa-notify/pkg/logger"
	"github.com/rumahkitanet/wa-notify/pkg/prom"
	"github.com/valyala/fasthttp"
)

// Client talks to the Node wa-gateway process that owns the WhatsApp session.
// Every operation resolves to a result value: transport failures are folded
// into the result's Error field, never returned as Go errors, so callers have
// exactly one path to handle. There is no retry at this layer; the gateway
// owns pacing and the operator retries out of band.
type Client struct {
	baseURL   string
	timeout   time.Duration
	bulkDelay time.Duration
	http      *fasthttp.Client
}

type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration // per-call deadline for status/qr/send/lifecycle
	BulkDelay       time.Duration // inter-message pacing hint forwarded to the gateway
	MaxConns        int
	ReadBufferSize  int
	WriteBufferSize int
}

const (
	defaultRequestTimeout = 10 * time.Second
	defaultBulkDelay      = 2 * time.Second
)

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("gateway base url is required")
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	delay := config.BulkDelay
	if delay <= 0 {
		delay = defaultBulkDelay
	}

	c := &Client{
		baseURL:   config.BaseURL,
		timeout:   timeout,
		bulkDelay: delay,
		http: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 60 * time.Second,
			ReadBufferSize:      config.ReadBufferSize,
			WriteBufferSize:     config.WriteBufferSize,
		},
	}

	logger.Info("WhatsApp gateway client initialized", "url", config.BaseURL, "timeout", timeout, "bulk_delay", delay)

	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// StatusResult mirrors the gateway's /status payload.
type StatusResult struct {
	Ready bool   `json:"ready"`
	Phone string `json:"phone"`
	HasQR bool   `json:"hasQR"`
	Error string `json:"error,omitempty"`
}

// AckResult is the gateway's generic acknowledgement shape, used by /send,
// /restart and /logout.
type AckResult struct {
	Success bool   `json:"success"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// QRResult carries the /qr payload through opaquely. The QR encoding is the
// gateway's business.
type QRResult struct {
	Payload json.RawMessage
	Error   string
}

// BulkResult is the /send-bulk response. When the gateway was unreachable or
// rejected the batch, Results is empty and Error holds the reason.
type BulkResult struct {
	Results []model.SendResult `json:"results"`
	Error   string             `json:"error,omitempty"`
}

type bulkRequest struct {
	Recipients []model.Recipient `json:"recipients"`
	Message    string            `json:"message"`
	Delay      int64             `json:"delay"` // milliseconds
}

// Status fetches the gateway's connection readiness.
func (c *Client) Status(ctx context.Context) StatusResult {
	body, err := c.doRequest(ctx, "status", fasthttp.MethodGet, "/status", nil, c.timeout)
	if err != nil {
		return StatusResult{Error: c.unavailable(err)}
	}

	var st StatusResult
	if err := json.Unmarshal(body, &st); err != nil {
		return StatusResult{Error: c.unavailable(err)}
	}
	return st
}

// QR fetches the pending login QR payload, passed through untouched.
func (c *Client) QR(ctx context.Context) QRResult {
	body, err := c.doRequest(ctx, "qr", fasthttp.MethodGet, "/qr", nil, c.timeout)
	if err != nil {
		return QRResult{Error: c.unavailable(err)}
	}
	return QRResult{Payload: body}
}

// Send delivers one message to one phone number.
func (c *Client) Send(ctx context.Context, phone, message string) AckResult {
	payload, _ := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
	})

	body, err := c.doRequest(ctx, "send", fasthttp.MethodPost, "/send", payload, c.timeout)
	if err != nil {
		return AckResult{Success: false, Phone: phone, Error: c.unavailable(err)}
	}

	var ack AckResult
	if err := json.Unmarshal(body, &ack); err != nil {
		return AckResult{Success: false, Phone: phone, Error: c.unavailable(err)}
	}
	return ack
}

// SendBulk delivers one message to many recipients in a single gateway call.
// The gateway paces individual sends with the configured delay, so the
// deadline scales with the batch size.
func (c *Client) SendBulk(ctx context.Context, recipients []model.Recipient, message string) BulkResult {
	payload, _ := json.Marshal(bulkRequest{
		Recipients: recipients,
		Message:    message,
		Delay:      c.bulkDelay.Milliseconds(),
	})

	timeout := c.timeout + c.bulkDelay*time.Duration(len(recipients)+1)
	body, err := c.doRequest(ctx, "send_bulk", fasthttp.MethodPost, "/send-bulk", payload, timeout)
	if err != nil {
		return BulkResult{Error: c.unavailable(err)}
	}

	var res BulkResult
	if err := json.Unmarshal(body, &res); err != nil {
		return BulkResult{Error: c.unavailable(err)}
	}
	return res
}

// Restart asks the gateway to tear down and reinitialize its WhatsApp client.
func (c *Client) Restart(ctx context.Context) AckResult {
	return c.lifecycle(ctx, "restart", "/restart")
}

// Logout drops the gateway's WhatsApp session; a new QR scan is required
// afterwards.
func (c *Client) Logout(ctx context.Context) AckResult {
	return c.lifecycle(ctx, "logout", "/logout")
}

func (c *Client) lifecycle(ctx context.Context, op, path string) AckResult {
	body, err := c.doRequest(ctx, op, fasthttp.MethodPost, path, nil, c.timeout)
	if err != nil {
		return AckResult{Success: false, Error: c.unavailable(err)}
	}

	var ack AckResult
	if err := json.Unmarshal(body, &ack); err != nil {
		return AckResult{Success: false, Error: c.unavailable(err)}
	}
	return ack
}

// doRequest performs one HTTP round trip with an explicit deadline. The
// gateway reports application errors in the body with non-2xx statuses, so
// the body is returned for any status code and decoded by the caller.
func (c *Client) doRequest(ctx context.Context, op, method, path string, body []byte, timeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}

	start := time.Now()
	err := c.http.DoDeadline(req, resp, deadline)
	elapsed := time.Since(start)
	prom.ObserveGatewayRequest(op, elapsed, err == nil)

	if err != nil {
		logger.Warn("gateway request failed", "op", op, "error", err, "latency", elapsed.String())
		return nil, err
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}

func (c *Client) unavailable(err error) string {
	return fmt.Sprintf("gateway unavailable: %v, ensure the gateway process is running at %s", err, c.baseURL)
}
