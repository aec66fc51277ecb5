package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

func init() {
	logging.InitNop()
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return New(Config{BaseURL: ts.URL, Timeout: 5 * time.Second}), ts
}

func TestErrorBodyCodeWinsOverStatus(t *testing.T) {
	// A 404 whose body says invalid_folder must classify as invalid_folder,
	// not as the status-derived file_not_found.
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{Error: "no such folder", Code: "invalid_folder"})
	}))
	defer ts.Close()

	_, err := c.ListFolder(context.Background(), "x", 50, 0, "")
	if !IsKind(err, KindInvalidFolder) {
		t.Fatalf("kind = %v, want invalid_folder", KindOf(err))
	}
	var ge *Error
	if !errors.As(err, &ge) || ge.Message != "no such folder" {
		t.Errorf("message not taken from body: %v", err)
	}
}

func TestErrorStatusFallback(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusForbidden, KindPermissionDenied},
		{http.StatusNotFound, KindFileNotFound},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusServiceUnavailable, KindStorageUnavailable},
		{http.StatusInsufficientStorage, KindStorageLimitExceeded},
		{http.StatusBadRequest, KindInternal},
	}
	for _, tt := range tests {
		c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := c.Status(context.Background(), "")
		ts.Close()
		if !IsKind(err, tt.want) {
			t.Errorf("status %d: kind = %v, want %v", tt.status, KindOf(err), tt.want)
		}
	}
}

func TestUnknownBodyCodeFallsBackToStatus(t *testing.T) {
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{Error: "nope", Code: "mystery_code"})
	}))
	defer ts.Close()

	_, err := c.Root(context.Background(), "")
	if !IsKind(err, KindPermissionDenied) {
		t.Fatalf("kind = %v, want permission_denied", KindOf(err))
	}
}

func TestReadOnlyShortCircuitsMutations(t *testing.T) {
	var hits atomic.Int64
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()
	c.SetReadOnly(true)

	ctx := context.Background()
	calls := []struct {
		name string
		fn   func() error
	}{
		{"create", func() error { return c.CreateFolder(ctx, "a", "p", "") }},
		{"rename folder", func() error { return c.RenameFolder(ctx, "f", "b", "") }},
		{"move file", func() error { return c.MoveFile(ctx, "f", "p", "") }},
		{"delete file", func() error { return c.DeleteFile(ctx, "f", "") }},
		{"upload", func() error {
			_, err := c.Upload(ctx, "p", "", "x.txt", strings.NewReader("x"), 1)
			return err
		}},
	}
	for _, call := range calls {
		if err := call.fn(); !IsKind(err, KindReadOnly) {
			t.Errorf("%s: kind = %v, want read_only", call.name, KindOf(err))
		}
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("read-only mutations reached the server %d times", n)
	}

	// Lifting the mode lets mutations through again.
	c.SetReadOnly(false)
	c.DeleteFile(ctx, "f", "")
	if hits.Load() == 0 {
		t.Error("mutation blocked after read-only mode was lifted")
	}
}

func TestAuthTokenApplied(t *testing.T) {
	var got string
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(protocol.StatusResponse{})
	}))
	defer ts.Close()

	c.Status(context.Background(), "")
	if got != "" {
		t.Fatalf("unexpected auth header without a token: %q", got)
	}

	c.SetAuthToken("secret-token")
	c.Status(context.Background(), "")
	if got != "Bearer secret-token" {
		t.Fatalf("auth header = %q, want Bearer secret-token", got)
	}
}

func TestListFolderQueryParameters(t *testing.T) {
	var path, query string
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(protocol.ListResponse{})
	}))
	defer ts.Close()

	if _, err := c.ListFolder(context.Background(), "abc", 25, 50, "u9"); err != nil {
		t.Fatal(err)
	}
	if path != "/folder/abc" {
		t.Errorf("path = %q", path)
	}
	for _, want := range []string{"limit=25", "offset=50", "user_id=u9"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestUploadSendsMultipartFields(t *testing.T) {
	var name, folderID, userID, content string
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			name = header.Filename
			data, _ := io.ReadAll(file)
			content = string(data)
			file.Close()
		}
		folderID = r.FormValue("folder_id")
		userID = r.FormValue("user_id")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(protocol.UploadResponse{FileID: "f1", Name: name})
	}))
	defer ts.Close()

	out, err := c.Upload(context.Background(), "dir-7", "u3", "report.pdf", strings.NewReader("pdf-bytes"), 9)
	if err != nil {
		t.Fatal(err)
	}
	if out.FileID != "f1" {
		t.Errorf("file id = %q", out.FileID)
	}
	if name != "report.pdf" || content != "pdf-bytes" {
		t.Errorf("file part = (%q, %q)", name, content)
	}
	if folderID != "dir-7" || userID != "u3" {
		t.Errorf("form fields = (%q, %q)", folderID, userID)
	}
}

func TestPingTracksOnlineState(t *testing.T) {
	healthy := true
	c, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !c.IsOnline() {
		t.Error("client should be online after a healthy ping")
	}

	healthy = false
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure")
	}
	if c.IsOnline() {
		t.Error("client should be offline after a failed ping")
	}
}

func TestDownloadURL(t *testing.T) {
	c := New(Config{BaseURL: "http://store.example"})
	u := c.DownloadURL("f1", "d2", "u3", "dev4")
	if !strings.HasPrefix(u, "http://store.example/download?") {
		t.Fatalf("url = %q", u)
	}
	for _, want := range []string{"file_id=f1", "folder_id=d2", "user_id=u3", "device_id=dev4"} {
		if !strings.Contains(u, want) {
			t.Errorf("url %q missing %q", u, want)
		}
	}
}
