package workersai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"inpaint/config"
	"inpaint/internal/clients/transport"
	"inpaint/internal/dependencies"
)

// Client calls models hosted on Cloudflare Workers AI through the REST API.
type Client struct {
	apiToken   string
	accountID  string
	baseUrl    string
	httpClient *http.Client
}

func NewClient(cfg config.WorkersAIConfig, timeout time.Duration) *Client {
	return &Client{
		apiToken:  cfg.ApiToken,
		accountID: cfg.AccountID,
		baseUrl:   strings.TrimSuffix(strings.TrimSpace(cfg.BaseUrl), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiToken,
	}
}

func (c *Client) runUrl(modelID string) string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseUrl, c.accountID, strings.TrimPrefix(modelID, "/"))
}

// Run implements dependencies.Runner.
func (c *Client) Run(ctx context.Context, modelID string, in dependencies.Input) (*dependencies.Output, error) {
	body := inpaintRequest{
		Prompt:   in.Prompt,
		Image:    byteArray(in.Image.Body),
		Mask:     byteArray(in.Mask.Body),
		NumSteps: in.NumSteps,
	}

	resp, err := transport.Post(c.httpClient, ctx, c.runUrl(modelID), body, c.headers())
	if err != nil {
		var se *transport.StatusError
		if errors.As(err, &se) {
			if msg := envelopeErrors(se.Body); msg != "" {
				return nil, fmt.Errorf("workers ai %s: %s: %s", modelID, se.Status, msg)
			}
		}
		return nil, fmt.Errorf("workers ai %s: %w", modelID, err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return &dependencies.Output{Image: resp.Body}, nil
	}

	defer resp.Body.Close()
	var env Envelope[imageResult]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("workers ai %s: decode response: %w", modelID, err)
	}
	if !env.Success || len(env.Errors) > 0 {
		return nil, fmt.Errorf("workers ai %s: %s", modelID, env.errorText())
	}
	img, err := base64.StdEncoding.DecodeString(env.Result.Image)
	if err != nil {
		return nil, fmt.Errorf("workers ai %s: decode image: %w", modelID, err)
	}
	return &dependencies.Output{Image: io.NopCloser(bytes.NewReader(img))}, nil
}

// VerifyToken checks that the configured API token is active.
func (c *Client) VerifyToken(ctx context.Context) error {
	env, err := transport.Get[Envelope[TokenStatus]](c.httpClient, ctx, c.baseUrl+"/user/tokens/verify", c.headers())
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("verify token: %s", env.errorText())
	}
	if env.Result.Status != "active" {
		return fmt.Errorf("verify token: token status is %q", env.Result.Status)
	}
	return nil
}

func envelopeErrors(b []byte) string {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(b, &env); err != nil {
		return ""
	}
	return env.errorText()
}
