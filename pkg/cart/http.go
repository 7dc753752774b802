package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gigscope/gigscope/pkg/session"
	"github.com/hashicorp/go-retryablehttp"
)

// HTTPCart posts line items to a remote cart service.
type HTTPCart struct {
	endpoint string
	session  session.Provider
	client   *retryablehttp.Client
}

// NewHTTPCart builds a cart client for baseURL. The session token, when
// present, is sent as a bearer token.
func NewHTTPCart(baseURL string, sess session.Provider) *HTTPCart {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 3

	return &HTTPCart{
		endpoint: strings.TrimRight(baseURL, "/") + "/cart/items",
		session:  sess,
		client:   client,
	}
}

func (c *HTTPCart) Add(ctx context.Context, line LineItem) error {
	body, err := json.Marshal(line)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", line.Ref)
	if c.session != nil && c.session.Token() != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg != "" {
			return fmt.Errorf("%w: HTTP %d: %s", ErrRejected, resp.StatusCode, msg)
		}
		return fmt.Errorf("%w: HTTP %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
