package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioConfig holds SMS gateway credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

// SMSSender delivers SMS intents through the Twilio Messages REST endpoint.
type SMSSender struct {
	cfg    TwilioConfig
	client *http.Client
}

// NewSMSSender constructs the SMS transport.
func NewSMSSender(cfg TwilioConfig) *SMSSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	return &SMSSender{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

// Send performs one delivery attempt.
func (s *SMSSender) Send(ctx context.Context, intent Intent) error {
	if s.cfg.AccountSID == "" || s.cfg.AuthToken == "" {
		return errors.New("twilio credentials not configured")
	}

	form := url.Values{}
	form.Set("To", intent.Recipient)
	form.Set("From", s.cfg.From)
	form.Set("Body", intent.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(s.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
