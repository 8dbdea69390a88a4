package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "SITEMGR_HTTP_TIMEOUT"
	apiTokenEnvKey     = "SITEMGR_API_TOKEN"
)

// Client is a simple HTTP client for the sitemgr API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/api/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) ListFiles(ctx context.Context) (FilesResponse, error) {
	var resp FilesResponse
	err := c.do(ctx, http.MethodGet, "/api/files", nil, nil, &resp)
	return resp, err
}

// UploadFile streams content as the multipart field "file" under name.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader) (UploadResponse, error) {
	var resp UploadResponse

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(name))
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		pr.Close()
		return resp, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeader(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

// DownloadFile copies one blob's content to w.
func (c *Client) DownloadFile(ctx context.Context, name string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	c.setAuthHeader(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(name), nil, nil, nil)
}

func (c *Client) ListBookmarks(ctx context.Context) (BookmarksResponse, error) {
	var resp BookmarksResponse
	err := c.do(ctx, http.MethodGet, "/api/bookmarks", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateBookmark(ctx context.Context, req BookmarkCreateRequest) (BookmarkResponse, error) {
	var resp BookmarkResponse
	err := c.do(ctx, http.MethodPost, "/api/bookmarks", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateBookmark(ctx context.Context, id string, req BookmarkUpdateRequest) (BookmarkResponse, error) {
	var resp BookmarkResponse
	err := c.do(ctx, http.MethodPut, "/api/bookmarks/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Attach(ctx context.Context, id, filename string) (AttachmentsResponse, error) {
	var resp AttachmentsResponse
	err := c.do(ctx, http.MethodPost, "/api/bookmarks/"+url.PathEscape(id)+"/attachments", nil, AttachRequest{Filename: filename}, &resp)
	return resp, err
}

func (c *Client) Detach(ctx context.Context, id, filename string) (AttachmentsResponse, error) {
	var resp AttachmentsResponse
	err := c.do(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(id)+"/attachments/"+url.PathEscape(filename), nil, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
