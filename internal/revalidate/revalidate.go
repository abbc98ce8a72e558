// Package revalidate tells the frontend to rebuild its static pages after
// content changes.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Client struct {
	url    string
	secret string
	http   *http.Client
	log    zerolog.Logger
}

func New(url, secret string, log zerolog.Logger) *Client {
	return &Client{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

func (c *Client) Enabled() bool {
	return c.url != ""
}

// Notify triggers revalidation in the background. Failures are logged only.
func (c *Client) Notify(resource string) {
	if !c.Enabled() {
		return
	}
	go func() {
		if err := c.Trigger(context.Background(), resource); err != nil {
			c.log.Warn().Err(err).Str("resource", resource).Msg("revalidation failed")
			return
		}
		c.log.Debug().Str("resource", resource).Msg("revalidation triggered")
	}()
}

func (c *Client) Trigger(ctx context.Context, resource string) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"secret":   c.secret,
		"resource": resource,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call revalidation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revalidation failed with status code: %d", resp.StatusCode)
	}
	return nil
}
