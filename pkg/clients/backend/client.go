package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/config"
)

const (
	refreshPath     = "/auth/refresh"
	requestIDHeader = "X-Request-ID"
)

type requestIDKey struct{}

// WithRequestID attaches an inbound request id to ctx. Backend calls made with
// the returned context send it instead of generating their own.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Credentials supplies and updates the bearer tokens. Implementations must be
// safe for concurrent use.
type Credentials interface {
	AccessToken() string
	RefreshToken() string
	UpdateAccessToken(ctx context.Context, token string) error
	Expire(ctx context.Context)
}

// APIClient is a resty-backed implementation of Gateway.
type APIClient struct {
	httpClient *resty.Client
	creds      Credentials
	logger     *zap.Logger
}

// NewClient builds a backend client. creds may be nil for anonymous use.
func NewClient(cfg config.BackendConfig, creds Credentials, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{
		httpClient: restyClient,
		creds:      creds,
		logger:     logger,
	}
}

type call struct {
	method string
	path   string
	query  map[string]string
	body   any
	result any
	// anonymous calls never attach a token and never trigger a refresh.
	anonymous bool
	// noRetry calls attach the token but surface a 401 as is.
	noRetry bool
}

// do sends the call, refreshing the access token at most once on a 401.
func (c *APIClient) do(ctx context.Context, cl call) (*resty.Response, error) {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	retried := false

	for {
		resp, err := c.execute(ctx, cl, requestID)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode() != http.StatusUnauthorized || cl.anonymous || cl.noRetry || c.creds == nil {
			return resp, c.check(cl, resp)
		}

		if retried {
			c.logger.Warn("request rejected after token refresh",
				zap.String("path", cl.path), zap.String("request_id", requestID))
			return resp, c.expire(ctx, cl, resp, nil)
		}
		retried = true

		if err := c.refresh(ctx); err != nil {
			c.logger.Warn("token refresh failed", zap.String("path", cl.path), zap.String("request_id", requestID), zap.Error(err))
			return resp, c.expire(ctx, cl, resp, err)
		}
		c.logger.Debug("access token refreshed, retrying", zap.String("path", cl.path), zap.String("request_id", requestID))
	}
}

func (c *APIClient) execute(ctx context.Context, cl call, requestID string) (*resty.Response, error) {
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID).
		SetError(&errorBody{})

	if !cl.anonymous && c.creds != nil {
		if token := c.creds.AccessToken(); token != "" {
			req.SetAuthToken(token)
		}
	}
	if cl.query != nil {
		req.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		req.SetBody(cl.body)
	}
	if cl.result != nil {
		req.SetResult(cl.result)
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: cl.method, Path: cl.path, Err: err}
	}

	c.logger.Debug("backend request completed",
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))

	return resp, nil
}

func (c *APIClient) check(cl call, resp *resty.Response) error {
	if !resp.IsError() && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	return newError(cl, resp)
}

func newError(cl call, resp *resty.Response) *Error {
	apiErr := &Error{
		Kind:       kindFor(resp.StatusCode()),
		StatusCode: resp.StatusCode(),
		Method:     cl.method,
		Path:       cl.path,
	}
	if body, ok := resp.Error().(*errorBody); ok {
		apiErr.Message = body.message()
		apiErr.Fields = body.Fields
	}
	return apiErr
}

func (c *APIClient) expire(ctx context.Context, cl call, resp *resty.Response, cause error) error {
	c.creds.Expire(ctx)
	apiErr := newError(cl, resp)
	apiErr.Kind = KindUnauthenticated
	apiErr.Expired = true
	apiErr.Err = cause
	return apiErr
}

var errNoRefreshToken = errors.New("no refresh token")

func (c *APIClient) refresh(ctx context.Context) error {
	token := c.creds.RefreshToken()
	if token == "" {
		return errNoRefreshToken
	}

	cl := call{method: http.MethodPost, path: refreshPath}
	var out struct {
		AccessToken string `json:"access_token"`
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, uuid.NewString()).
		SetAuthToken(token).
		SetBody(map[string]any{}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post(refreshPath)
	if err != nil {
		return &Error{Kind: KindTransport, Method: cl.method, Path: cl.path, Err: err}
	}
	if err := c.check(cl, resp); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return fmt.Errorf("refresh response carried no access token")
	}
	return c.creds.UpdateAccessToken(ctx, out.AccessToken)
}

// Refresh exchanges the refresh token for a new access token and stores it.
func (c *APIClient) Refresh(ctx context.Context) error {
	if c.creds == nil {
		return errNoRefreshToken
	}
	return c.refresh(ctx)
}
