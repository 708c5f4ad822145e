package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Notification mirrors the server's wire representation.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	SourceID    *string   `json:"source_id,omitempty"`
	SourceType  *string   `json:"source_type,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListOptions narrows and pages a notification listing.
type ListOptions struct {
	Type  string
	Limit int
	Skip  int
}

// ListResult is one page of notifications plus counts under the same filter.
type ListResult struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	UnreadCount   int64          `json:"unread_count"`
}

// CountResult reports an unread count and whether it was served from the
// server-side cache.
type CountResult struct {
	Count  int64 `json:"count"`
	Cached bool  `json:"cached"`
}

// CreateNotificationRequest is the payload for creating a notification.
// Creation is restricted to internal (admin) callers.
type CreateNotificationRequest struct {
	UserID     string  `json:"userId"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	SourceID   *string `json:"sourceId,omitempty"`
	SourceType *string `json:"sourceType,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client is the notification API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// List fetches a page of the recipient's notifications, newest first.
func (c *Client) List(ctx context.Context, recipientID uuid.UUID, opts ListOptions) (*ListResult, error) {
	params := url.Values{}
	params.Set("userId", recipientID.String())
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Skip > 0 {
		params.Set("skip", strconv.Itoa(opts.Skip))
	}

	var result ListResult
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/notifications?"+params.Encode(), nil, &result); err != nil {
		return nil, fmt.Errorf("client.List: %w", err)
	}
	return &result, nil
}

// Create creates a notification for the given recipient.
func (c *Client) Create(ctx context.Context, req CreateNotificationRequest) (*Notification, error) {
	var created Notification
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/notifications", req, &created); err != nil {
		return nil, fmt.Errorf("client.Create: %w", err)
	}
	return &created, nil
}

// MarkRead marks a single notification as read.
func (c *Client) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	body := map[string]bool{"isRead": true}

	var updated Notification
	if err := c.doRequest(ctx, http.MethodPatch, "/api/v1/notifications/"+url.PathEscape(id.String()), body, &updated); err != nil {
		return nil, fmt.Errorf("client.MarkRead: %w", err)
	}
	return &updated, nil
}

// MarkAllRead marks all of the recipient's notifications as read, optionally
// narrowed by type. Returns the number of notifications updated.
func (c *Client) MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	body := map[string]string{"userId": recipientID.String()}
	if notificationType != "" {
		body["type"] = notificationType
	}

	var result struct {
		UpdatedCount int64 `json:"updated_count"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/notifications/mark-all-read", body, &result); err != nil {
		return 0, fmt.Errorf("client.MarkAllRead: %w", err)
	}
	return result.UpdatedCount, nil
}

// Delete removes a single notification.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/notifications/"+url.PathEscape(id.String()), nil, nil); err != nil {
		return fmt.Errorf("client.Delete: %w", err)
	}
	return nil
}

// DeleteAll removes every notification belonging to the recipient and
// returns the number deleted.
func (c *Client) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	params := url.Values{}
	params.Set("userId", recipientID.String())

	var result struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/notifications?"+params.Encode(), nil, &result); err != nil {
		return 0, fmt.Errorf("client.DeleteAll: %w", err)
	}
	return result.DeletedCount, nil
}

// UnreadCount fetches the recipient's unread count, optionally by type.
func (c *Client) UnreadCount(ctx context.Context, recipientID uuid.UUID, notificationType string) (*CountResult, error) {
	params := url.Values{}
	params.Set("userId", recipientID.String())
	if notificationType != "" {
		params.Set("type", notificationType)
	}

	var result CountResult
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/notifications/count?"+params.Encode(), nil, &result); err != nil {
		return nil, fmt.Errorf("client.UnreadCount: %w", err)
	}
	return &result, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return err
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &HTTPError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}

	return nil
}
