package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"juaconnect-server/models"
	"juaconnect-server/services"
)

// Identity headers understood by the API.
const (
	headerUserRole  = "X-User-Role"
	headerUserName  = "X-User-Name"
	headerUserEmail = "X-User-Email"
)

// APIError is a failure reported by the API. It unwraps to the matching
// services error so callers can use errors.As the same way for HTTP and
// local backends.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
	typed      error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d (%s)", e.StatusCode, e.Kind)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.typed
}

// HTTPClient is a Backend talking to the REST API.
type HTTPClient struct {
	baseURL string
	id      Identity
	http    *http.Client
}

// NewHTTPClient returns a Backend acting as id against the API at baseURL.
// A nil httpClient gets a client with a 10 second timeout.
func NewHTTPClient(baseURL string, id Identity, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		id:      id,
		http:    httpClient,
	}
}

// Health reports whether the API answers its health check.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) CreateRequest(ctx context.Context, input models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	return requestResult(&out, c.do(ctx, http.MethodPost, "/api/v1/client/requests", nil, input, &out, nil))
}

func (c *HTTPClient) MyRequests(ctx context.Context, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	err := c.do(ctx, http.MethodGet, "/api/v1/client/requests", statusQuery(statuses), nil, &out, nil)
	return out, err
}

func (c *HTTPClient) CancelRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	path := fmt.Sprintf("/api/v1/client/requests/%d", id)
	body := models.ServiceRequestUpdate{Status: models.RequestStatusCancelled}
	return requestResult(&out, c.do(ctx, http.MethodPut, path, nil, body, &out, nil))
}

func (c *HTTPClient) AvailableRequests(ctx context.Context) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	err := c.do(ctx, http.MethodGet, "/api/v1/artisan/requests/available", nil, nil, &out, nil)
	return out, err
}

func (c *HTTPClient) AssignedRequests(ctx context.Context, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	err := c.do(ctx, http.MethodGet, "/api/v1/artisan/requests/assigned", statusQuery(statuses), nil, &out, nil)
	return out, err
}

func (c *HTTPClient) GetRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	if err := c.do(ctx, http.MethodGet, requestPath(id, ""), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AcceptRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	return requestResult(&out, c.do(ctx, http.MethodPost, requestPath(id, "accept"), nil, nil, &out, nil))
}

func (c *HTTPClient) RejectRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	return requestResult(&out, c.do(ctx, http.MethodPost, requestPath(id, "reject"), nil, nil, &out, nil))
}

func (c *HTTPClient) StartWork(ctx context.Context, id uint, totalAmount *float64) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	body := models.StartWork{TotalAmount: totalAmount}
	return requestResult(&out, c.do(ctx, http.MethodPost, requestPath(id, "start"), nil, body, &out, nil))
}

func (c *HTTPClient) CompleteWork(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	return requestResult(&out, c.do(ctx, http.MethodPost, requestPath(id, "complete"), nil, nil, &out, nil))
}

func (c *HTTPClient) Notifications(ctx context.Context, order services.Order) (*models.NotificationList, error) {
	query := url.Values{"order": {"oldest"}}
	if order == services.NewestFirst {
		query.Set("order", "newest")
	}
	list := &models.NotificationList{}
	var unread int
	if err := c.do(ctx, http.MethodGet, "/api/v1/notifications", query, nil, &list.Notifications, &unread); err != nil {
		return nil, err
	}
	list.UnreadCount = unread
	if list.Notifications == nil {
		list.Notifications = []models.Notification{}
	}
	return list, nil
}

func (c *HTTPClient) UnreadCount(ctx context.Context) (int, error) {
	var unread int
	err := c.do(ctx, http.MethodGet, "/api/v1/notifications/unread", nil, nil, nil, &unread)
	return unread, err
}

func (c *HTTPClient) MarkNotificationRead(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/notifications/%d/read", id), nil, nil, nil, nil)
}

func (c *HTTPClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/api/v1/notifications/read-all", nil, nil, nil, nil)
}

func (c *HTTPClient) DeleteNotification(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%d", id), nil, nil, nil, nil)
}

func (c *HTTPClient) SearchArtisans(ctx context.Context, category, location string) ([]models.ArtisanProfile, error) {
	query := url.Values{}
	if category != "" {
		query.Set("service_category", category)
	}
	if location != "" {
		query.Set("location", location)
	}
	var out []models.ArtisanProfile
	err := c.do(ctx, http.MethodGet, "/api/v1/artisans", query, nil, &out, nil)
	return out, err
}

func (c *HTTPClient) GetArtisan(ctx context.Context, id uint) (*models.ArtisanProfile, error) {
	var out models.ArtisanProfile
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/artisans/%d", id), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) BookArtisan(ctx context.Context, input models.DirectBookingCreate) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	return requestResult(&out, c.do(ctx, http.MethodPost, "/api/v1/client/bookings", nil, input, &out, nil))
}

// envelope mirrors models.Envelope with data left raw for decoding.
type envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	Error       string          `json:"error"`
	UnreadCount *int            `json:"unread_count"`
}

// do sends one API call. data and unread receive the envelope fields when
// non-nil; data is decoded for storage errors too.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, data interface{}, unread *int) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.id.Role != "" {
		req.Header.Set(headerUserRole, string(c.id.Role))
	}
	if c.id.Party.Name != "" {
		req.Header.Set(headerUserName, c.id.Party.Name)
	}
	if c.id.Party.Email != "" {
		req.Header.Set(headerUserEmail, c.id.Party.Email)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decoding response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if data != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
		}
	}
	if unread != nil && env.UnreadCount != nil {
		*unread = *env.UnreadCount
	}

	if env.Success && resp.StatusCode < 400 {
		return nil
	}
	return newAPIError(resp.StatusCode, env)
}

func newAPIError(status int, env envelope) *APIError {
	apiErr := &APIError{StatusCode: status, Kind: env.Error, Message: env.Message}
	switch env.Error {
	case models.ErrorKindValidation, models.ErrorKindIdentityRequired:
		apiErr.typed = &services.ValidationError{Message: env.Message}
	case models.ErrorKindNotFound:
		apiErr.typed = &services.NotFoundError{Resource: "remote resource"}
	case models.ErrorKindInvalidTransition:
		apiErr.typed = &services.InvalidTransitionError{}
	case models.ErrorKindStorage:
		apiErr.typed = &services.StorageError{Op: "remote save", Err: errors.New(env.Message)}
	}
	return apiErr
}

// requestResult keeps the decoded request alongside a storage error, which
// means the server applied the change without saving it.
func requestResult(out *models.ServiceRequest, err error) (*models.ServiceRequest, error) {
	if err == nil {
		return out, nil
	}
	if services.IsStorage(err) && out.ID != 0 {
		return out, err
	}
	return nil, err
}

func requestPath(id uint, action string) string {
	if action == "" {
		return "/api/v1/requests/" + strconv.FormatUint(uint64(id), 10)
	}
	return fmt.Sprintf("/api/v1/artisan/requests/%d/%s", id, action)
}

func statusQuery(statuses []models.ServiceRequestStatus) url.Values {
	if len(statuses) == 0 {
		return nil
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return url.Values{"status": {strings.Join(parts, ",")}}
}
