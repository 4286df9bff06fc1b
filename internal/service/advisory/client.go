package advisory

import (
	"context"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	phttp "TradeGate/pkg/http"
)

// Client asks an external advisory service for a short note on an admitted
// decision. Advisory output is commentary only: it never generates or vetoes
// a signal, and every failure degrades to an empty note.
type Client struct {
	url     string
	timeout time.Duration
	client  *phttp.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		url:     url,
		timeout: timeout,
		client:  phttp.NewClient(phttp.WithClientTimeout(timeout)),
	}
}

type annotateResponse struct {
	Note string `json:"note"`
}

// Annotate requests one advisory note. The caller treats errors as fail-open.
func (c *Client) Annotate(ctx context.Context, ev models.DecisionEvent) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp annotateResponse
	err := c.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodPost,
		URL:    fmt.Sprintf("%s/annotate", c.url),
		Body:   ev,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("advisory annotate: %w", err)
	}
	return resp.Note, nil
}
