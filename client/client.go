// Package client implements the consuming half of the availability
// synchronization protocol: a REST client for the write path and initial
// reads, a local view cache that applies pushed snapshots, and a watcher
// that keeps the push channel alive with bounded exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

// APIError is a non-2xx response from the rental service, carrying the
// server-provided message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is the request/response half of a session. It is safe for
// concurrent use: the watcher reads the token while the application logs in
// or issues requests.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    httpClient,
		log:     opts.Logger,
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Username, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"password": password,
	}, nil)
}

// Bikes fetches the full inventory over the read path.
func (c *Client) Bikes(ctx context.Context) ([]domain.Bike, error) {
	var bikes []domain.Bike
	if err := c.do(ctx, http.MethodGet, "/api/bikes", nil, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

// MyBikes fetches the caller's own listings.
func (c *Client) MyBikes(ctx context.Context) ([]domain.Bike, error) {
	var bikes []domain.Bike
	if err := c.do(ctx, http.MethodGet, "/api/my-bikes", nil, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

// ListBikeInput mirrors the listing form fields.
type ListBikeInput struct {
	Model         string  `json:"model"`
	Location      string  `json:"location"`
	ModelYear     int     `json:"modelYear"`
	RentRate      float64 `json:"rentRate"`
	ContactNumber string  `json:"contactNumber"`
	PhotoURL      string  `json:"photoUrl,omitempty"`
}

// ListBike adds a bike to the shared inventory.
func (c *Client) ListBike(ctx context.Context, input ListBikeInput) (*domain.Bike, error) {
	var bike domain.Bike
	if err := c.do(ctx, http.MethodPost, "/api/list-bike", input, &bike); err != nil {
		return nil, err
	}
	return &bike, nil
}

// Book books a bike.
func (c *Client) Book(ctx context.Context, bikeID string) error {
	return c.do(ctx, http.MethodPost, "/api/book", map[string]string{"bikeId": bikeID}, nil)
}

// Return returns a booked bike.
func (c *Client) Return(ctx context.Context, bikeID string) error {
	return c.do(ctx, http.MethodPost, "/api/return", map[string]string{"bikeId": bikeID}, nil)
}

// Remove removes one of the caller's bikes.
func (c *Client) Remove(ctx context.Context, bikeID string) error {
	return c.do(ctx, http.MethodPost, "/api/remove-bike", map[string]string{"bikeId": bikeID}, nil)
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			msg = envelope.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
