package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/google/uuid"
)

var ErrMissingCredentials = errors.New("response carries no credentials")

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient creates a client for the API at baseURL. timeout bounds
// every request; zero means no timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type userEnvelope struct {
	Data models.User `json:"data"`
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*models.Credentials, *models.User, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/auth/sign_in", body)
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password, confirmation string) (*models.Credentials, *models.User, error) {
	body := map[string]string{
		"email":                 email,
		"password":              password,
		"password_confirmation": confirmation,
	}
	return c.authenticate(ctx, "/auth", body)
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, body any) (*models.Credentials, *models.User, error) {
	var env userEnvelope
	h, err := c.do(ctx, http.MethodPost, path, nil, body, &env)
	if err != nil {
		return nil, nil, err
	}

	creds := models.CredentialsFromHeader(h)
	if !creds.Valid() {
		return nil, nil, ErrMissingCredentials
	}
	return &creds, &env.Data, nil
}

func (c *HTTPClient) ValidateToken(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var env userEnvelope
	if _, err := c.do(ctx, http.MethodGet, "/auth/validate_token", &creds, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/users/current", &creds, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, creds models.Credentials) ([]models.User, error) {
	var users []models.User
	if _, err := c.do(ctx, http.MethodGet, "/users", &creds, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) ListChannels(ctx context.Context, creds models.Credentials) ([]models.Channel, error) {
	var channels []models.Channel
	if _, err := c.do(ctx, http.MethodGet, "/channels", &creds, nil, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (c *HTTPClient) GetChannel(ctx context.Context, creds models.Credentials, id int64) (*models.Channel, error) {
	var ch models.Channel
	if _, err := c.do(ctx, http.MethodGet, "/channels/"+strconv.FormatInt(id, 10), &creds, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *HTTPClient) CreateChannel(ctx context.Context, creds models.Credentials, name string, userIDs []int64) (*models.Channel, error) {
	if userIDs == nil {
		userIDs = []int64{}
	}
	body := struct {
		Name    string  `json:"name"`
		UserIDs []int64 `json:"user_ids"`
	}{Name: name, UserIDs: userIDs}

	var ch models.Channel
	if _, err := c.do(ctx, http.MethodPost, "/channels", &creds, body, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *HTTPClient) AddMember(ctx context.Context, creds models.Credentials, channelID, memberID int64) (*models.Channel, error) {
	body := struct {
		ID       int64 `json:"id"`
		MemberID int64 `json:"member_id"`
	}{ID: channelID, MemberID: memberID}

	var ch models.Channel
	if _, err := c.do(ctx, http.MethodPost, "/channel/add_member", &creds, body, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *HTTPClient) ListMessages(ctx context.Context, creds models.Credentials, channelID int64) ([]models.Message, error) {
	var msgs []models.Message
	path := fmt.Sprintf("/channels/%d/messages", channelID)
	if _, err := c.do(ctx, http.MethodGet, path, &creds, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTPClient) CreateMessage(ctx context.Context, creds models.Credentials, channelID int64, content string) (*models.Message, error) {
	body := map[string]map[string]string{"message": {"content": content}}

	var m models.Message
	path := fmt.Sprintf("/channels/%d/messages", channelID)
	if _, err := c.do(ctx, http.MethodPost, path, &creds, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// do performs one JSON round-trip and decodes a 2xx body into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, creds *models.Credentials, in, out any) (http.Header, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		creds.Apply(req.Header)
	}
	reqID := uuid.NewString()
	req.Header.Set(common.HeaderRequestID, reqID)

	ctx = logging.ContextWith(ctx, "request_id", reqID)
	log := c.log.With("method", method, "path", path)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, newAPIError(resp.StatusCode, body)
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.Header, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.Header, nil
}
