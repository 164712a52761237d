package validation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BotChecker verifies the opaque bot-check token carried by create-type
// requests. The token is validated and then discarded; it never reaches
// persistence.
type BotChecker interface {
	Verify(ctx context.Context, token string) error
}

// ErrBotCheckFailed is returned when the token is missing or rejected.
var ErrBotCheckFailed = errors.New("bot check failed")

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RemoteBotChecker verifies tokens against the reCAPTCHA siteverify endpoint.
type RemoteBotChecker struct {
	Secret string
	Client *http.Client
}

// NewRemoteBotChecker builds a checker with a short request timeout.
func NewRemoteBotChecker(secret string) *RemoteBotChecker {
	return &RemoteBotChecker{
		Secret: secret,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *RemoteBotChecker) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrBotCheckFailed
	}

	form := url.Values{"secret": {r.Secret}, "response": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, siteVerifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if !body.Success {
		return ErrBotCheckFailed
	}
	return nil
}

// PresenceBotChecker only requires the token to be present. Used in
// development and tests, and when no captcha secret is configured.
type PresenceBotChecker struct{}

func (PresenceBotChecker) Verify(_ context.Context, token string) error {
	if token == "" {
		return ErrBotCheckFailed
	}
	return nil
}
