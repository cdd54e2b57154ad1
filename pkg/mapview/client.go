// Package mapview implements the map-facing side of the rambu console: region
// option loading with cancellation, reverse geocoding, region matching, map
// feature rendering and the simulation point workflow.
package mapview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sigapbencana/rambu_api/pkg/session"
)

// Client is a minimal HTTP client for the rambu API. Responses are normalized
// at this boundary so the rest of the package only sees canonical shapes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      session.TokenStore
}

// NewClient constructs a new Client with sane defaults. baseURL should
// include the version prefix, e.g. "https://api.sigapbencana.id/v1".
func NewClient(baseURL string, store session.TokenStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		store:      store,
	}
}

// SetHTTPClient replaces the underlying HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Provinces returns all province options.
func (c *Client) Provinces(ctx context.Context) ([]Option, error) {
	body, err := c.get(ctx, "/locations/provinces", nil)
	if err != nil {
		return nil, err
	}
	return normalizeOptions(body, "provinceId", "kode")
}

// Cities returns city options for one province.
func (c *Client) Cities(ctx context.Context, provID int) ([]Option, error) {
	body, err := c.get(ctx, "/locations/cities/"+strconv.Itoa(provID), nil)
	if err != nil {
		return nil, err
	}
	return normalizeOptions(body)
}

// Districts returns district options for one city.
func (c *Client) Districts(ctx context.Context, cityID int) ([]Option, error) {
	body, err := c.get(ctx, "/locations/districts/"+strconv.Itoa(cityID), nil)
	if err != nil {
		return nil, err
	}
	return normalizeOptions(body)
}

// SubDistricts returns sub-district options for one district.
func (c *Client) SubDistricts(ctx context.Context, districtID int) ([]Option, error) {
	body, err := c.get(ctx, "/locations/subdistricts/"+strconv.Itoa(districtID), nil)
	if err != nil {
		return nil, err
	}
	return normalizeOptions(body)
}

// Signs returns the sign points matching the filter.
func (c *Client) Signs(ctx context.Context, f Filter) ([]Sign, error) {
	body, err := c.get(ctx, "/rambu", f.query())
	if err != nil {
		return nil, err
	}
	var signs []Sign
	if err := json.Unmarshal(body, &signs); err != nil {
		return nil, fmt.Errorf("malformed sign list: %w", err)
	}
	return signs, nil
}

// ProvinceBoundary returns the raw GeoJSON boundary of one province.
func (c *Client) ProvinceBoundary(ctx context.Context, provID int) ([]byte, error) {
	return c.raw(ctx, "/locations/province-geojson/"+strconv.Itoa(provID))
}

// Geocode resolves a coordinate to administrative region names.
func (c *Client) Geocode(ctx context.Context, lat, lon float64) (*GeocodeResult, error) {
	payload, _ := json.Marshal(map[string]float64{"lat": lat, "long": lon})

	body, err := c.do(ctx, http.MethodPost, "/ref/geografis", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	var result GeocodeResult
	if err := json.Unmarshal(unwrapData(body), &result); err != nil {
		return nil, fmt.Errorf("malformed geocode response: %w", err)
	}
	return &result, nil
}

// Photo is an attachment included in a multipart create request.
type Photo struct {
	Field    string
	Filename string
	Data     []byte
}

// CreateSign submits a new sign point as a multipart form. Simulation points
// go to their own endpoint but share the same form shape.
func (c *Client) CreateSign(ctx context.Context, simulation bool, fields map[string]string, photos []Photo) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, p := range photos {
		part, err := w.CreateFormFile(p.Field, p.Filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(p.Data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	path := "/rambu"
	if simulation {
		path = "/rambu-simulasi"
	}
	_, err := c.do(ctx, http.MethodPost, path, w.FormDataContentType(), &buf)
	return err
}

// get issues a GET and unwraps the response envelope down to the data payload.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// raw issues a GET and returns the body without envelope unwrapping.
func (c *Client) raw(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, "", nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.store != nil {
		if token, ok := c.store.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.store != nil {
			c.store.Clear()
		}
		return nil, fmt.Errorf("unauthorized: session cleared")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return data, nil
}
