// Package gateway wraps the paginated storage HTTP API behind typed calls.
// It owns no explorer state: pure request/response plus error classification.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/metrics"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// Client is the remote listing gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	online    bool
	lastPing  time.Time
	authToken string
	readOnly  bool
}

// Config holds gateway configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string
	ReadOnly  bool
}

// New creates a new gateway client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		online:    true,
		authToken: cfg.AuthToken,
		readOnly:  cfg.ReadOnly,
	}
}

// SetAuthToken sets the bearer token for requests.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// SetReadOnly toggles global read-only mode. While set, every mutating call
// fails with ErrReadOnly before any network I/O.
func (c *Client) SetReadOnly(readOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readOnly = readOnly
}

// ReadOnly reports whether read-only mode is set.
func (c *Client) ReadOnly() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readOnly
}

// IsOnline returns true if the last request reached the server.
func (c *Client) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

func (c *Client) setOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online != online {
		if online {
			logging.Info("server is back online")
		} else {
			logging.Error("server is offline")
		}
	}
	c.online = online
	c.lastPing = time.Now()
}

func (c *Client) applyAuth(req *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.setOnline(false)
		return &Error{Kind: KindTransport, Message: fmt.Sprintf("server returned %d", resp.StatusCode)}
	}

	c.setOnline(true)
	return nil
}

// Root fetches the scope root listing.
func (c *Client) Root(ctx context.Context, userID string) (*protocol.RootResponse, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out protocol.RootResponse
	if err := c.getJSON(ctx, "root", "/root", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFolder fetches one page of a folder's direct children.
func (c *Client) ListFolder(ctx context.Context, folderID string, limit, offset int, userID string) (*protocol.ListResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out protocol.ListResponse
	if err := c.getJSON(ctx, "folder", "/folder/"+url.PathEscape(folderID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a filename search across the scope.
func (c *Client) Search(ctx context.Context, query string, limit int, userID string) (*protocol.SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out protocol.SearchResponse
	if err := c.getJSON(ctx, "search", "/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the quota snapshot.
func (c *Client) Status(ctx context.Context, userID string) (*protocol.StatusResponse, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out protocol.StatusResponse
	if err := c.getJSON(ctx, "status", "/status", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFolder creates a folder under parentID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID, userID string) error {
	body := protocol.CreateFolderRequest{Name: name, ParentID: parentID, UserID: userID}
	return c.mutateJSON(ctx, "folders_create", http.MethodPost, "/folders/create", body)
}

// RenameFolder renames a folder.
func (c *Client) RenameFolder(ctx context.Context, folderID, newName, userID string) error {
	body := protocol.RenameRequest{Name: newName, UserID: userID}
	return c.mutateJSON(ctx, "folders_rename", http.MethodPost, "/folders/"+url.PathEscape(folderID)+"/rename", body)
}

// MoveFolder moves a folder under a new parent.
func (c *Client) MoveFolder(ctx context.Context, folderID, parentID, userID string) error {
	body := protocol.MoveRequest{ParentID: parentID, UserID: userID}
	return c.mutateJSON(ctx, "folders_move", http.MethodPost, "/folders/"+url.PathEscape(folderID)+"/move", body)
}

// DeleteFolder deletes a folder and its contents.
func (c *Client) DeleteFolder(ctx context.Context, folderID, userID string) error {
	return c.mutateJSON(ctx, "folders_delete", http.MethodDelete, "/folders/"+url.PathEscape(folderID)+deleteQuery(userID), nil)
}

// RenameFile renames a file.
func (c *Client) RenameFile(ctx context.Context, fileID, newName, userID string) error {
	body := protocol.RenameRequest{Name: newName, UserID: userID}
	return c.mutateJSON(ctx, "files_rename", http.MethodPost, "/files/"+url.PathEscape(fileID)+"/rename", body)
}

// MoveFile moves a file into a target folder.
func (c *Client) MoveFile(ctx context.Context, fileID, parentID, userID string) error {
	body := protocol.MoveRequest{ParentID: parentID, UserID: userID}
	return c.mutateJSON(ctx, "files_move", http.MethodPost, "/files/"+url.PathEscape(fileID)+"/move", body)
}

// DeleteFile deletes a file.
func (c *Client) DeleteFile(ctx context.Context, fileID, userID string) error {
	return c.mutateJSON(ctx, "files_delete", http.MethodDelete, "/files/"+url.PathEscape(fileID)+deleteQuery(userID), nil)
}

func deleteQuery(userID string) string {
	if userID == "" {
		return ""
	}
	return "?user_id=" + url.QueryEscape(userID)
}

// Upload sends one file as multipart form data. Quota is enforced
// server-side per call; the queue layer serializes uploads.
func (c *Client) Upload(ctx context.Context, folderID, userID, name string, content io.Reader, size int64) (*protocol.UploadResponse, error) {
	if c.ReadOnly() {
		return nil, ErrReadOnly
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	if folderID != "" {
		if err := mw.WriteField("folder_id", folderID); err != nil {
			return nil, err
		}
	}
	if userID != "" {
		if err := mw.WriteField("user_id", userID); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.applyAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		metrics.RecordGatewayRequest("upload", "transport_error", time.Since(start))
		metrics.RecordUpload(size, false)
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := c.decodeError(resp)
		metrics.RecordGatewayRequest("upload", string(KindOf(apiErr)), time.Since(start))
		metrics.RecordUpload(size, false)
		return nil, apiErr
	}

	c.setOnline(true)
	metrics.RecordGatewayRequest("upload", "ok", time.Since(start))
	metrics.RecordUpload(size, true)

	var out protocol.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out, nil
}

// OrgUsers fetches the organization member directory.
func (c *Client) OrgUsers(ctx context.Context) ([]protocol.OrgUser, error) {
	var out protocol.OrgUsersResponse
	if err := c.getJSON(ctx, "org_users", "/org/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// OrgDevices fetches the registered devices for a user ("" = self).
func (c *Client) OrgDevices(ctx context.Context, userID string) ([]protocol.OrgDevice, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out protocol.OrgDevicesResponse
	if err := c.getJSON(ctx, "org_devices", "/org/devices", q, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// DownloadURL builds the redirect/stream URL for a download. The download
// itself is consumed outside this engine.
func (c *Client) DownloadURL(fileID, folderID, userID, deviceID string) string {
	q := url.Values{}
	if fileID != "" {
		q.Set("file_id", fileID)
	}
	if folderID != "" {
		q.Set("folder_id", folderID)
	}
	if userID != "" {
		q.Set("user_id", userID)
	}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return c.baseURL + "/download?" + q.Encode()
}

// getJSON issues a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.applyAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		metrics.RecordGatewayRequest(endpoint, "transport_error", time.Since(start))
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := c.decodeError(resp)
		metrics.RecordGatewayRequest(endpoint, string(KindOf(apiErr)), time.Since(start))
		logging.Debug("gateway request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Error(apiErr))
		return apiErr
	}

	c.setOnline(true)
	metrics.RecordGatewayRequest(endpoint, "ok", time.Since(start))

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// mutateJSON issues a mutating request with an optional JSON body.
// Read-only mode short-circuits before any network I/O.
func (c *Client) mutateJSON(ctx context.Context, endpoint, method, path string, body interface{}) error {
	if c.ReadOnly() {
		return ErrReadOnly
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		metrics.RecordGatewayRequest(endpoint, "transport_error", time.Since(start))
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		apiErr := c.decodeError(resp)
		metrics.RecordGatewayRequest(endpoint, string(KindOf(apiErr)), time.Since(start))
		logging.Debug("gateway mutation failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Error(apiErr))
		return apiErr
	}

	c.setOnline(true)
	metrics.RecordGatewayRequest(endpoint, "ok", time.Since(start))
	return nil
}

// decodeError turns a non-2xx response into a typed *Error. The body's
// machine-readable code wins; the HTTP status is the fallback.
func (c *Client) decodeError(resp *http.Response) error {
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable &&
		resp.StatusCode != http.StatusInsufficientStorage {
		c.setOnline(false)
	}

	var er protocol.ErrorResponse
	if json.NewDecoder(resp.Body).Decode(&er) == nil {
		if kind, ok := kindFromCode(er.Code); ok {
			return &Error{Kind: kind, Message: er.Error}
		}
		if er.Error != "" {
			return &Error{Kind: kindFromStatus(resp.StatusCode), Message: er.Error}
		}
	}
	return &Error{Kind: kindFromStatus(resp.StatusCode), Message: fmt.Sprintf("server returned %d", resp.StatusCode)}
}
