package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// TwilioSender sends SMS through the Twilio Messages API
type TwilioSender struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

// NewTwilioSender creates a new Twilio sender
func NewTwilioSender(baseURL, accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Send posts the message to Twilio. Failures are logged and returned in the result.
func (s *TwilioSender) Send(ctx context.Context, to, body string, category Category) Result {
	if to == "" || body == "" {
		return Result{Success: false, Error: "missing 'to' or 'message' field"}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return s.fail(category, to, fmt.Errorf("failed to build request: %w", err))
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.fail(category, to, fmt.Errorf("twilio request failed: %w", err))
	}
	defer resp.Body.Close()

	var data twilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return s.fail(category, to, fmt.Errorf("failed to decode twilio response (HTTP %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return s.fail(category, to, fmt.Errorf("%s", msg))
	}

	log.Info().
		Str("category", string(category)).
		Str("to", to).
		Str("message_id", data.SID).
		Msg("SMS sent via Twilio")

	return Result{Success: true, MessageID: data.SID, Note: "Sent via Twilio"}
}

func (s *TwilioSender) fail(category Category, to string, err error) Result {
	log.Error().
		Err(err).
		Str("category", string(category)).
		Str("to", to).
		Msg("Failed to send SMS")
	return Result{Success: false, Error: err.Error()}
}

// LogSender logs messages instead of delivering them
type LogSender struct {
	now func() time.Time
}

// NewLogSender creates a sender used when no SMS provider is configured
func NewLogSender() *LogSender {
	return &LogSender{now: time.Now}
}

// Send logs the message and reports a synthetic success
func (s *LogSender) Send(ctx context.Context, to, body string, category Category) Result {
	if to == "" || body == "" {
		return Result{Success: false, Error: "missing 'to' or 'message' field"}
	}

	id := fmt.Sprintf("mock_%d", s.now().UnixMilli())
	log.Info().
		Str("category", string(category)).
		Str("to", to).
		Str("message", body).
		Str("message_id", id).
		Msg("Mock SMS")

	return Result{Success: true, MessageID: id, Note: "Mocked (Twilio not configured)"}
}
