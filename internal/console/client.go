package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/internal/reviewer"
	"github.com/agrilink/agrilink-backend/pkg/config"
	"github.com/agrilink/agrilink-backend/pkg/db/models"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
)

// Client is the typed HTTP client the console uses to reach the API. Errors
// are translated back into the platform taxonomy so console code can branch
// on codes the same way server code does.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds an API client from console configuration.
func NewClient(cfg config.ConsoleConfig) (*Client, error) {
	base := strings.TrimRight(cfg.APIBaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("api base url required")
	}
	return &Client{
		baseURL: base,
		token:   cfg.APIToken,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// ListQuery narrows a request listing.
type ListQuery struct {
	Status   string
	District string
	Query    string
	Page     int
	Limit    int
}

// SubmitOrderRequest files a new request and returns the created entity.
func (c *Client) SubmitOrderRequest(ctx context.Context, input orderrequests.SubmitInput) (*models.OrderRequest, error) {
	var request models.OrderRequest
	if err := c.do(ctx, http.MethodPost, "/api/v1/order-requests", input, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListOrderRequests fetches one page of requests with status tab counts.
func (c *Client) ListOrderRequests(ctx context.Context, query ListQuery) (*reviewer.ListResult, error) {
	values := url.Values{}
	if query.Status != "" {
		values.Set("status", query.Status)
	}
	if query.District != "" {
		values.Set("district", query.District)
	}
	if query.Query != "" {
		values.Set("q", query.Query)
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}

	path := "/api/v1/order-requests"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result reviewer.ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Respond issues a reviewer decision and returns the authoritative post-state.
func (c *Client) Respond(ctx context.Context, id uuid.UUID, decision, message string) (*models.OrderRequest, error) {
	body := map[string]string{
		"status":  decision,
		"message": message,
	}
	var request models.OrderRequest
	path := fmt.Sprintf("/api/v1/order-requests/%s/status", id)
	if err := c.do(ctx, http.MethodPatch, path, body, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListAccepted pages through every accepted request, satisfying the hub
// network aggregator's rebuild source.
func (c *Client) ListAccepted(ctx context.Context) ([]models.OrderRequest, error) {
	var accepted []models.OrderRequest
	for page := 1; ; page++ {
		result, err := c.ListOrderRequests(ctx, ListQuery{
			Status: "accepted",
			Page:   page,
			Limit:  100,
		})
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, result.Items...)
		if int64(len(accepted)) >= result.Total || len(result.Items) == 0 {
			return accepted, nil
		}
	}
}

type notificationsPayload struct {
	Notifications []models.Notification `json:"notifications"`
}

// ListNotifications fetches the durable notification stream.
func (c *Client) ListNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	path := "/api/v1/notifications"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var payload notificationsPayload
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Notifications, nil
}

// MarkRead flips one durable notification's read state in the store.
func (c *Client) MarkRead(ctx context.Context, id uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/notifications/%s/read", id)
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

// MarkAllRead flips every durable notification for the caller's scope.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/notifications/read-all", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call api")
	}
	defer func() {
		io.Copy(io.Discard, response.Body)
		response.Body.Close()
	}()

	if response.StatusCode >= 400 {
		return decodeError(response)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response payload")
	}
	return nil
}

func decodeError(response *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("api returned status %d", response.StatusCode))
	}

	typed := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	if len(envelope.Error.Details) > 0 {
		var details any
		if err := json.Unmarshal(envelope.Error.Details, &details); err == nil {
			typed = typed.WithDetails(details)
		}
	}
	return typed
}
