package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when no product matches a barcode.
var ErrNotFound = errors.New("product not found")

// Product is one item from the product database.
type Product struct {
	// Code is the product barcode.
	Code string

	// Name is the product display name.
	Name string

	// Brand is the product brand, if known.
	Brand string

	// Nutrition per 100g.
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// Config configures the lookup client.
type Config struct {
	// BaseURL is the API root (e.g. "https://world.openfoodfacts.org").
	BaseURL string

	// Timeout bounds each request. Default: 10 seconds
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// PageSize is the maximum number of search results. Default: 10
	PageSize int
}

// Client queries the product database.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a lookup client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 10
	}

	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
				ForceAttemptHTTP2: true,
			},
		},
	}, nil
}

// searchResponse mirrors the search API payload.
type searchResponse struct {
	Products []productPayload `json:"products"`
}

// productResponse mirrors the barcode API payload.
type productResponse struct {
	Status  int            `json:"status"`
	Product productPayload `json:"product"`
}

type productPayload struct {
	Code       string     `json:"code"`
	Name       string     `json:"product_name"`
	Brands     string     `json:"brands"`
	Nutriments nutriments `json:"nutriments"`
}

type nutriments struct {
	Calories float64 `json:"energy-kcal_100g"`
	Protein  float64 `json:"proteins_100g"`
	Fat      float64 `json:"fat_100g"`
	Carbs    float64 `json:"carbohydrates_100g"`
}

func (p productPayload) toProduct() Product {
	return Product{
		Code:     p.Code,
		Name:     p.Name,
		Brand:    p.Brands,
		Calories: p.Nutriments.Calories,
		Protein:  p.Nutriments.Protein,
		Fat:      p.Nutriments.Fat,
		Carbs:    p.Nutriments.Carbs,
	}
}

// Search returns products matching the free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(c.config.PageSize))

	endpoint := c.config.BaseURL + "/cgi/search.pl?" + params.Encode()

	var payload searchResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	products := make([]Product, 0, len(payload.Products))
	for _, p := range payload.Products {
		products = append(products, p.toProduct())
	}
	return products, nil
}

// ProductByBarcode returns the product with the given barcode.
// It returns ErrNotFound when the database has no such product.
func (c *Client) ProductByBarcode(ctx context.Context, code string) (*Product, error) {
	if code == "" {
		return nil, fmt.Errorf("barcode cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", c.config.BaseURL, url.PathEscape(code))

	var payload productResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("barcode lookup failed: %w", err)
	}

	// The API reports a missing product with status 0 rather than 404.
	if payload.Status == 0 {
		return nil, ErrNotFound
	}

	product := payload.Product.toProduct()
	if product.Code == "" {
		product.Code = code
	}
	return &product, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
