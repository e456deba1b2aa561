package bulkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bingotables/bulkmsg/internal/metrics"
	"github.com/bingotables/bulkmsg/internal/models"
)

const (
	pathPreview       = "/bulk-messaging/users/preview"
	pathProvinces     = "/bulk-messaging/filters/provinces"
	pathCantons       = "/bulk-messaging/filters/provinces/%s/cantones"
	pathNeighborhoods = "/bulk-messaging/filters/cantones/%s/barrios"
	pathCampaigns     = "/bulk-messaging/campaigns"
	pathCampaign      = "/bulk-messaging/campaigns/%d"
	pathCampaignAct   = "/bulk-messaging/campaigns/%d/%s"
	pathCampaignDtl   = "/bulk-messaging/campaigns/%d/details"
)

// Client is a bulk-messaging API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outgoing requests to rps requests per second
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new bulk-messaging API client
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "bulkapi")
	return c
}

type call struct {
	operation   string
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

// requestJSON sends a JSON body (or none) and decodes the envelope data into result
func (c *Client) requestJSON(ctx context.Context, op, method, path string, body any, auth bool, result any) error {
	cl := call{operation: op, method: method, path: path, auth: auth}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.fail(&APIError{Operation: op, Stage: StageBeforeRequest, Type: TypeRequestPrep, Err: fmt.Errorf("marshal request: %w", err)})
		}
		cl.body = bytes.NewReader(data)
		cl.contentType = "application/json"
	}
	return c.do(ctx, cl, result)
}

func (c *Client) do(ctx context.Context, cl call, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(&APIError{Operation: cl.operation, Stage: StageBeforeRequest, Type: TypeIO, Err: err})
		}
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return c.fail(&APIError{Operation: cl.operation, Stage: StageBeforeRequest, Type: TypeRequestPrep, Err: fmt.Errorf("create request: %w", err)})
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(cl.operation, "error", time.Since(start).Seconds())
		return c.fail(&APIError{Operation: cl.operation, Stage: StageRequest, Type: TypeIO, Err: fmt.Errorf("do request: %w", err)})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	metrics.ObserveAPIRequest(cl.operation, strconv.Itoa(resp.StatusCode), duration.Seconds())
	c.logger.Debug("api request",
		"operation", cl.operation,
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"duration", duration,
		"request_id", requestID,
	)
	if err != nil {
		return c.fail(&APIError{Operation: cl.operation, Stage: StageAfterRequest, Type: TypeIO, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)})
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Operation:  cl.operation,
			Stage:      StageAfterRequest,
			Type:       TypeHTTPStatus,
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
		if decodeErr == nil {
			apiErr.Message = env.serverMessage()
		}
		return c.fail(apiErr)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if decodeErr != nil {
		return c.fail(&APIError{Operation: cl.operation, Stage: StageAfterRequest, Type: TypeJSONParse, StatusCode: resp.StatusCode, Body: raw, Err: decodeErr})
	}
	if env.Success != nil && !*env.Success {
		return c.fail(&APIError{
			Operation:  cl.operation,
			Stage:      StageAfterRequest,
			Type:       TypeBusiness,
			StatusCode: resp.StatusCode,
			Message:    env.serverMessage(),
			Body:       raw,
		})
	}

	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return c.fail(&APIError{Operation: cl.operation, Stage: StageAfterRequest, Type: TypeJSONParse, StatusCode: resp.StatusCode, Body: raw, Err: fmt.Errorf("decode data: %w", err)})
		}
	}

	return nil
}

func (c *Client) fail(err *APIError) error {
	metrics.IncAPIErrors(err.Type)
	c.logger.Debug("api request failed", "operation", err.Operation, "stage", err.Stage, "type", err.Type, "status", err.StatusCode, "error", err)
	return err
}

// PreviewUsers resolves an audience filter into candidate recipients
func (c *Client) PreviewUsers(ctx context.Context, filters any, limit int) (*PreviewResult, error) {
	var res PreviewResult
	req := PreviewRequest{Filters: filters, Limit: limit}
	if err := c.requestJSON(ctx, "preview", http.MethodPost, pathPreview, req, false, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Provinces lists provinces
func (c *Client) Provinces(ctx context.Context) ([]models.Location, error) {
	var res []models.Location
	if err := c.requestJSON(ctx, "provinces", http.MethodGet, pathProvinces, nil, false, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Cantons lists the cantons of a province
func (c *Client) Cantons(ctx context.Context, provinceID string) ([]models.Location, error) {
	var res []models.Location
	path := fmt.Sprintf(pathCantons, escape(provinceID))
	if err := c.requestJSON(ctx, "cantons", http.MethodGet, path, nil, false, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Neighborhoods lists the barrios of a canton
func (c *Client) Neighborhoods(ctx context.Context, cantonID string) ([]models.Location, error) {
	var res []models.Location
	path := fmt.Sprintf(pathNeighborhoods, escape(cantonID))
	if err := c.requestJSON(ctx, "neighborhoods", http.MethodGet, path, nil, false, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListCampaigns lists all campaigns
func (c *Client) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var res []models.Campaign
	if err := c.requestJSON(ctx, "list_campaigns", http.MethodGet, pathCampaigns, nil, true, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateCampaign submits a new campaign as a multipart form
func (c *Client) CreateCampaign(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error) {
	const op = "create_campaign"

	body, contentType, err := encodeCreateForm(req)
	if err != nil {
		return nil, c.fail(&APIError{Operation: op, Stage: StageBeforeRequest, Type: TypeRequestPrep, Err: err})
	}

	var res models.Campaign
	cl := call{
		operation:   op,
		method:      http.MethodPost,
		path:        pathCampaigns,
		body:        body,
		contentType: contentType,
		auth:        true,
	}
	if err := c.do(ctx, cl, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CampaignAction posts a lifecycle action for a campaign
func (c *Client) CampaignAction(ctx context.Context, id int64, action Action) error {
	if !action.Valid() {
		return c.fail(&APIError{Operation: "campaign_action", Stage: StageBeforeRequest, Type: TypeRequestPrep, Err: fmt.Errorf("unknown action %q", action)})
	}
	path := fmt.Sprintf(pathCampaignAct, id, action)
	return c.requestJSON(ctx, "campaign_"+string(action), http.MethodPost, path, nil, true, nil)
}

// DeleteCampaign removes a campaign
func (c *Client) DeleteCampaign(ctx context.Context, id int64) error {
	return c.requestJSON(ctx, "delete_campaign", http.MethodDelete, fmt.Sprintf(pathCampaign, id), nil, true, nil)
}

// CampaignDetails fetches stats and delivery logs of a campaign
func (c *Client) CampaignDetails(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	var res models.CampaignDetail
	if err := c.requestJSON(ctx, "campaign_details", http.MethodGet, fmt.Sprintf(pathCampaignDtl, id), nil, true, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func encodeCreateForm(req *CreateCampaignRequest) (io.Reader, string, error) {
	userIDs, err := json.Marshal(req.UserIDs)
	if err != nil {
		return nil, "", fmt.Errorf("marshal user ids: %w", err)
	}
	filters, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, "", fmt.Errorf("marshal filters: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", req.Name},
		{"message", req.Message},
		{"userIds", string(userIDs)},
		{"filters", string(filters)},
		{"intervalMinutes", strconv.Itoa(req.IntervalMinutes)},
		{"maxMessagesPerHour", strconv.Itoa(req.MaxMessagesPerHour)},
		{"createdBy", req.CreatedBy},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if req.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, req.Image.Filename))
		h.Set("Content-Type", req.Image.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(req.Image.Data); err != nil {
			return nil, "", fmt.Errorf("write image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
