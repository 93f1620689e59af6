package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ms-lab/commerce-go/internal/models"
)

// ProductClient talks to the product service: product lookups and the
// stock-decrement mutation.
type ProductClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ProductByID fetches a product. Returns ErrNotFound for a well-formed 404
// and ErrUnavailable for any transport-level failure.
func (c *ProductClient) ProductByID(ctx context.Context, productID int) (*models.Product, error) {
	url := fmt.Sprintf("%s/api/product/%d", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling product service: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: product service returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: decoding product response: %v", ErrUnavailable, err)
	}

	return &product, nil
}

// DecrementStock asks the product service to subtract quantity from the
// product's stock. The service rejects decrements that would leave the
// stock negative; the rejection comes back as a non-2xx status.
func (c *ProductClient) DecrementStock(ctx context.Context, productID, quantity int) error {
	url := fmt.Sprintf("%s/api/product/%d/update-stock", c.baseURL, productID)

	body, err := json.Marshal(models.UpdateStockRequest{Quantity: quantity})
	if err != nil {
		return fmt.Errorf("%w: encoding stock request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: calling product service: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: product service returned status %d", ErrUnavailable, resp.StatusCode)
	}

	return nil
}
