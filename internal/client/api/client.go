// Package api is a debugging client for the ChessQL HTTP API
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"chessql/internal/client/display"
)

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

// StatusError is returned for 4xx and 5xx responses
type StatusError struct {
	Status int
	Body   ErrorResponse
}

func (e *StatusError) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("request failed with status %d (%s)", e.Status, e.Body.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	fmt.Fprintf(c.Out, "%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if c.Verbose && bodyStr != "" {
		var pretty any
		if json.Unmarshal([]byte(bodyStr), &pretty) == nil {
			fmt.Fprintf(c.Out, "%sRequest Body:%s\n", display.Cyan, display.Reset)
			display.PrettyPrintJSON(c.Out, pretty)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		var pretty any
		if json.Unmarshal(respBody, &pretty) == nil {
			fmt.Fprintf(c.Out, "%sResponse Body:%s\n", display.Cyan, display.Reset)
			display.PrettyPrintJSON(c.Out, pretty)
		} else {
			fmt.Fprintf(c.Out, "%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(respBody))
		}
	}

	if resp.StatusCode >= 400 {
		serr := &StatusError{Status: resp.StatusCode}
		if json.Unmarshal(respBody, &serr.Body) == nil && !c.Verbose {
			fmt.Fprintf(c.Out, "%sError: %s%s\n", display.Red, serr.Body.Error, display.Reset)
			if serr.Body.Details != "" {
				fmt.Fprintf(c.Out, "%sDetails: %s%s\n", display.Red, serr.Body.Details, display.Reset)
			}
		}
		return serr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) Register(username, password, email string) (*AuthResponse, error) {
	req := &RegisterRequest{
		Username: username,
		Password: password,
		Email:    email,
	}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/register", req, &resp)
	return &resp, err
}

func (c *Client) Login(identifier, password string) (*AuthResponse, error) {
	req := &LoginRequest{
		Identifier: identifier,
		Password:   password,
	}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/login", req, &resp)
	return &resp, err
}

// Logout revokes the session server-side and drops the token
func (c *Client) Logout() error {
	if err := c.doRequest("POST", "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.AuthToken = ""
	return nil
}

func (c *Client) GetCurrentUser() (*UserResponse, error) {
	var resp UserResponse
	err := c.doRequest("GET", "/api/v1/auth/me", nil, &resp)
	return &resp, err
}

func (c *Client) Ingest(req *IngestRequest) (*IngestResponse, error) {
	var resp IngestResponse
	err := c.doRequest("POST", "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) Query(req *QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	err := c.doRequest("POST", "/api/v1/query", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(id int64) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("GET", "/api/v1/games/"+strconv.FormatInt(id, 10), nil, &resp)
	return &resp, err
}

func (c *Client) GetCaptures(id int64) ([]Capture, error) {
	var resp []Capture
	err := c.doRequest("GET", "/api/v1/games/"+strconv.FormatInt(id, 10)+"/captures", nil, &resp)
	return resp, err
}

func (c *Client) DeleteGame(id int64) error {
	return c.doRequest("DELETE", "/api/v1/games/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	err := c.doRequest("GET", "/api/v1/stats", nil, &resp)
	return &resp, err
}

func (c *Client) Examples() ([]Example, error) {
	var resp []Example
	err := c.doRequest("GET", "/api/v1/examples", nil, &resp)
	return resp, err
}

func (c *Client) ListAccounts() ([]Account, error) {
	var resp []Account
	err := c.doRequest("GET", "/api/v1/accounts", nil, &resp)
	return resp, err
}

func (c *Client) CreateAccount(username, platform string) (*Account, error) {
	var resp Account
	err := c.doRequest("POST", "/api/v1/accounts", &AccountRequest{Username: username, Platform: platform}, &resp)
	return &resp, err
}

func (c *Client) DeleteAccount(username, platform string) (*DeleteAccountResponse, error) {
	var resp DeleteAccountResponse
	path := "/api/v1/accounts/" + url.PathEscape(username) + "?platform=" + url.QueryEscape(platform)
	err := c.doRequest("DELETE", path, nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			// Try as raw string
			bodyData = body
		}
	}

	var result any
	if err := c.doRequest(method, path, bodyData, &result); err != nil {
		return err
	}
	if result != nil && !c.Verbose {
		display.PrettyPrintJSON(c.Out, result)
	}
	return nil
}
