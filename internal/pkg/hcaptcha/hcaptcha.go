package hcaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clawsite/clawsite/internal/pkg/env"
)

const defaultEndpoint = "https://hcaptcha.com/siteverify"

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks hCaptcha tokens. A verifier without a secret accepts everything.
type Verifier struct {
	Secret   string
	Endpoint string
	Client   *http.Client
}

func FromEnv() *Verifier {
	return &Verifier{
		Secret:   env.GetEnv("HCAPTCHA_SECRET", ""),
		Endpoint: defaultEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *Verifier) Enabled() bool {
	return v != nil && v.Secret != ""
}

func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return errors.New("hCaptcha token is empty")
	}

	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to hCaptcha API: %w", err)
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode hCaptcha API response: %w", err)
	}
	if !response.Success {
		msg := "hCaptcha validation failed"
		if len(response.ErrorCodes) > 0 {
			msg += ": " + strings.Join(response.ErrorCodes, ", ")
		}
		return errors.New(msg)
	}
	return nil
}
