// Package whatsapp sends messages through the GreenAPI WhatsApp gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"
	"enquiry_intake_backend/platform/phone"
)

// StatusQuotaExceeded is the GreenAPI status for an exhausted monthly quota.
const StatusQuotaExceeded = 466

const (
	statusCheckTimeout = 15 * time.Second
	stateAuthorized    = "authorized"
	errNotConfigured   = "WhatsApp service not available - Check GreenAPI configuration"
)

// Result is the outcome of one send. Failures are values, never errors, so
// callers can attach them to their own responses.
type Result struct {
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"messageId,omitempty"`
	Error             string `json:"error,omitempty"`
	QuotaExceeded     bool   `json:"quotaExceeded,omitempty"`
	StatusCode        int    `json:"statusCode,omitempty"`
	NetworkError      bool   `json:"-"`
}

// Status is the gateway instance state.
type Status struct {
	Connected bool   `json:"connected"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
}

type Client struct {
	baseURL    string
	instanceID string
	token      string
	http       *http.Client
	log        *logger.Logger
}

type sendRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendResponse struct {
	IDMessage    string `json:"idMessage"`
	Message      string `json:"message"`
	InvokeStatus struct {
		Description string `json:"description"`
	} `json:"invokeStatus"`
}

// NewClient returns nil when the instance credentials are not configured.
// A nil *Client reports every send as failed with a configuration error.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetGreenAPIInstanceID() == "" || cfg.GetGreenAPIToken() == "" {
		return nil
	}

	timeout := cfg.GetGreenAPITimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.GetGreenAPIURL(), "/"),
		instanceID: cfg.GetGreenAPIInstanceID(),
		token:      cfg.GetGreenAPIToken(),
		http:       &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/waInstance%s/%s/%s", c.baseURL, c.instanceID, method, c.token)
}

// Send delivers text to a mobile number or chat id. Only a 200 carrying an
// idMessage counts as success.
func (c *Client) Send(ctx context.Context, destination, text string) Result {
	if c == nil {
		return Result{Error: errNotConfigured}
	}

	chatID := phone.ToChatID(destination)
	if chatID == "" {
		return Result{Error: "No mobile number provided"}
	}

	body, err := json.Marshal(sendRequest{ChatID: chatID, Message: text})
	if err != nil {
		return Result{Error: fmt.Sprintf("marshal whatsapp payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Sprintf("build whatsapp request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		result := Result{Error: fmt.Sprintf("GreenAPI network error: %v", err), NetworkError: true}
		c.log.DispatchFailed(chatID, "send", 0, false, result.Error)
		return result
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed sendResponse
	_ = json.Unmarshal(data, &parsed)

	if resp.StatusCode == http.StatusOK && parsed.IDMessage != "" {
		c.log.Info("whatsapp sent via greenapi", "chatId", chatID, "messageId", parsed.IDMessage)
		return Result{Success: true, ProviderMessageID: parsed.IDMessage, StatusCode: resp.StatusCode}
	}

	result := Result{
		StatusCode: resp.StatusCode,
		Error:      "GreenAPI error: " + describeFailure(resp.StatusCode, parsed, data),
	}
	result.QuotaExceeded = resp.StatusCode == StatusQuotaExceeded || mentionsQuota(result.Error)
	c.log.DispatchFailed(chatID, "send", result.StatusCode, result.QuotaExceeded, result.Error)
	return result
}

// CheckStatus asks the gateway for the instance state.
func (c *Client) CheckStatus(ctx context.Context) Status {
	if c == nil {
		return Status{Error: "GreenAPI credentials not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, statusCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getStateInstance"), nil)
	if err != nil {
		return Status{Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return Status{Error: "GreenAPI request timeout (15 seconds)"}
		}
		return Status{Error: fmt.Sprintf("GreenAPI status check error: %v", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return Status{Error: fmt.Sprintf("GreenAPI HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))}
	}

	var state struct {
		StateInstance string `json:"stateInstance"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return Status{Error: fmt.Sprintf("decode greenapi state: %v", err)}
	}
	if state.StateInstance == "" {
		state.StateInstance = "unknown"
	}
	return Status{Connected: state.StateInstance == stateAuthorized, State: state.StateInstance}
}

func describeFailure(status int, parsed sendResponse, raw []byte) string {
	switch status {
	case http.StatusOK:
		return "response carried no message id"
	case http.StatusBadRequest:
		return orDefault(parsed.Message, "Bad Request - Check phone number format or validity") +
			" (Bad Request - Check phone number format, validity, or if the number has WhatsApp)"
	case http.StatusUnauthorized:
		return orDefault(parsed.Message, "Unauthorized - Check API credentials") + " (Unauthorized - Check API credentials)"
	case http.StatusForbidden:
		return orDefault(parsed.Message, "Forbidden - Check API permissions") + " (Forbidden - Check API permissions)"
	case http.StatusNotFound:
		return orDefault(parsed.Message, "Not Found - Check API endpoint") + " (Not Found - Check API endpoint)"
	case StatusQuotaExceeded:
		desc := parsed.InvokeStatus.Description
		if desc == "" || desc == "Monthly quota exceeded" {
			desc = "Monthly quota has been exceeded. Upgrade your GreenAPI plan to send to more numbers"
		}
		return desc
	default:
		if parsed.Message != "" {
			return parsed.Message
		}
		if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 300 {
			return fmt.Sprintf("Unknown GreenAPI error (Status: %d): %s", status, text)
		}
		return fmt.Sprintf("Unknown GreenAPI error (Status: %d)", status)
	}
}

func mentionsQuota(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "quota exceeded") ||
		strings.Contains(lower, "monthly quota") ||
		strings.Contains(lower, "limit reached")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
