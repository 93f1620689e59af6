package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ms-lab/commerce-go/internal/models"
)

// CustomerClient talks to the customer service. Every call is bounded by
// the configured timeout; on expiry the call counts as failed and is not
// retried.
type CustomerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCustomerClient(baseURL string, timeout time.Duration) *CustomerClient {
	return &CustomerClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CustomerByID fetches a customer. Returns ErrNotFound for a well-formed
// 404 and ErrUnavailable for any transport-level failure.
func (c *CustomerClient) CustomerByID(ctx context.Context, customerID int) (*models.Customer, error) {
	url := fmt.Sprintf("%s/api/customer/%d", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling customer service: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, customerID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: customer service returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var customer models.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, fmt.Errorf("%w: decoding customer response: %v", ErrUnavailable, err)
	}

	return &customer, nil
}
