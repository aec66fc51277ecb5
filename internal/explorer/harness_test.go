package explorer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

func init() {
	logging.InitNop()
}

// fakeFolder is one folder of the in-memory store backing tests.
type fakeFolder struct {
	name    string
	entries []protocol.Entry
}

// fakeServer is an in-memory storage backend speaking the gateway contract.
type fakeServer struct {
	mu      sync.Mutex
	rootID  string
	folders map[string]*fakeFolder
	status  protocol.StatusResponse
	search  map[string][]protocol.SearchResult

	// uploadErr maps a filename to an error code returned for its upload.
	uploadErr map[string]string
	// failOnce maps a folder id to an error code returned for its next listing.
	failOnce map[string]string
	// gates block a folder's listing response until released.
	gates map[string]chan struct{}

	requests []string
	uploads  []string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		rootID: "root",
		folders: map[string]*fakeFolder{
			"root": {name: "Home"},
		},
		search:    make(map[string][]protocol.SearchResult),
		uploadErr: make(map[string]string),
		failOnce:  make(map[string]string),
		gates:     make(map[string]chan struct{}),
	}
}

func (f *fakeServer) addFolder(parentID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders[id] = &fakeFolder{name: name}
	p := f.folders[parentID]
	p.entries = append(p.entries, protocol.Entry{ID: id, Name: name, Kind: protocol.KindFolder})
}

func (f *fakeServer) addFile(parentID, id, name string, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.folders[parentID]
	p.entries = append(p.entries, protocol.Entry{ID: id, Name: name, Kind: protocol.KindFile, SizeBytes: size})
}

func (f *fakeServer) removeEntry(parentID, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.folders[parentID]
	for i, e := range p.entries {
		if e.ID == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}

// gate makes the next listing of folderID block until the returned function
// is called.
func (f *fakeServer) gate(folderID string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[folderID] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeServer) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeServer) writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(protocol.ErrorResponse{Error: code, Code: code})
}

func (f *fakeServer) paginate(entries []protocol.Entry, limit, offset int) ([]protocol.Entry, protocol.Pagination) {
	folders, files := 0, 0
	for _, e := range entries {
		if e.IsFolder() {
			folders++
		} else {
			files++
		}
	}
	page := protocol.Pagination{Offset: offset, Limit: limit, TotalFolders: folders, TotalFiles: files}
	if offset >= len(entries) {
		return nil, page
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], page
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/root":
		f.handleList(w, r, f.rootID, true)
	case strings.HasPrefix(r.URL.Path, "/folder/"):
		f.handleList(w, r, strings.TrimPrefix(r.URL.Path, "/folder/"), false)
	case r.URL.Path == "/search":
		f.handleSearch(w, r)
	case r.URL.Path == "/status":
		f.mu.Lock()
		status := f.status
		f.mu.Unlock()
		json.NewEncoder(w).Encode(status)
	case r.URL.Path == "/upload":
		f.handleUpload(w, r)
	case r.URL.Path == "/folders/create":
		f.handleCreate(w, r)
	case strings.HasSuffix(r.URL.Path, "/rename"):
		f.handleRename(w, r)
	case strings.HasSuffix(r.URL.Path, "/move"):
		f.handleMove(w, r)
	case r.Method == http.MethodDelete:
		f.handleDelete(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeServer) handleList(w http.ResponseWriter, r *http.Request, folderID string, isRoot bool) {
	f.mu.Lock()
	if gateCh, ok := f.gates[folderID]; ok {
		delete(f.gates, folderID)
		f.mu.Unlock()
		<-gateCh
		f.mu.Lock()
	}
	if code, ok := f.failOnce[folderID]; ok {
		delete(f.failOnce, folderID)
		f.mu.Unlock()
		status := http.StatusNotFound
		if code == "permission_denied" {
			status = http.StatusForbidden
		}
		f.writeError(w, status, code)
		return
	}
	folder, ok := f.folders[folderID]
	if !ok {
		f.mu.Unlock()
		f.writeError(w, http.StatusNotFound, "invalid_folder")
		return
	}
	entries := append([]protocol.Entry(nil), folder.entries...)
	f.mu.Unlock()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	items, page := f.paginate(entries, limit, offset)

	if isRoot {
		json.NewEncoder(w).Encode(protocol.RootResponse{FolderID: folderID, Items: items, Pagination: page})
		return
	}
	json.NewEncoder(w).Encode(protocol.ListResponse{Items: items, Pagination: page})
}

func (f *fakeServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.mu.Lock()
	if gateCh, ok := f.gates["search:"+q]; ok {
		delete(f.gates, "search:"+q)
		f.mu.Unlock()
		<-gateCh
		f.mu.Lock()
	}
	items := f.search[q]
	f.mu.Unlock()
	json.NewEncoder(w).Encode(protocol.SearchResponse{Items: items, Limit: 50})
}

func (f *fakeServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		f.writeError(w, http.StatusBadRequest, "internal")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		f.writeError(w, http.StatusBadRequest, "internal")
		return
	}
	file.Close()

	f.mu.Lock()
	if code, ok := f.uploadErr[header.Filename]; ok {
		f.mu.Unlock()
		f.writeError(w, http.StatusInsufficientStorage, code)
		return
	}
	f.uploads = append(f.uploads, header.Filename)
	folderID := r.FormValue("folder_id")
	id := "up-" + strconv.Itoa(len(f.uploads))
	if folder, ok := f.folders[folderID]; ok {
		folder.entries = append(folder.entries, protocol.Entry{
			ID: id, Name: header.Filename, Kind: protocol.KindFile, SizeBytes: header.Size,
		})
	}
	f.status.UsedStorageGB++
	f.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(protocol.UploadResponse{FileID: id, Name: header.Filename, SizeBytes: header.Size})
}

func (f *fakeServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateFolderRequest
	json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	id := "new-" + req.Name
	f.folders[id] = &fakeFolder{name: req.Name}
	if parent, ok := f.folders[req.ParentID]; ok {
		parent.entries = append(parent.entries, protocol.Entry{ID: id, Name: req.Name, Kind: protocol.KindFolder})
	}
	f.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeServer) handleRename(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/rename")
	var req protocol.RenameRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, folder := range f.folders {
		for i, e := range folder.entries {
			if e.ID == id {
				folder.entries[i].Name = req.Name
				w.WriteHeader(http.StatusOK)
				return
			}
		}
	}
	f.writeError(w, http.StatusNotFound, "file_not_found")
}

func (f *fakeServer) handleMove(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/move")
	var req protocol.MoveRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, folder := range f.folders {
		for i, e := range folder.entries {
			if e.ID == id {
				moved := e
				folder.entries = append(folder.entries[:i], folder.entries[i+1:]...)
				if target, ok := f.folders[req.ParentID]; ok {
					target.entries = append(target.entries, moved)
				}
				w.WriteHeader(http.StatusOK)
				return
			}
		}
	}
	f.writeError(w, http.StatusNotFound, "file_not_found")
}

func (f *fakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	id := parts[1]

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.folders, id)
	for _, folder := range f.folders {
		for i, e := range folder.entries {
			if e.ID == id {
				folder.entries = append(folder.entries[:i], folder.entries[i+1:]...)
				if f.status.UsedStorageGB > 0 {
					f.status.UsedStorageGB--
				}
				w.WriteHeader(http.StatusOK)
				return
			}
		}
	}
	f.writeError(w, http.StatusNotFound, "file_not_found")
}

func pathID(path, suffix string) string {
	parts := strings.Split(strings.Trim(strings.TrimSuffix(path, suffix), "/"), "/")
	return parts[len(parts)-1]
}

// defaultServer builds a small store most tests share:
//
//	Home (root)
//	├── Reports (42) ── Q1 (100) ── jan.csv (102)
//	│                └─ totals.xlsx (101)
//	├── Archive (55)
//	└── readme.txt (7)
func defaultServer() *fakeServer {
	fs := newFakeServer()
	fs.addFolder("root", "42", "Reports")
	fs.addFolder("root", "55", "Archive")
	fs.addFile("root", "7", "readme.txt", 1024)
	fs.addFolder("42", "100", "Q1")
	fs.addFile("42", "101", "totals.xlsx", 2048)
	fs.addFile("100", "102", "jan.csv", 512)
	return fs
}

// newTestSession spins up a fake server and a session rooted at it.
func newTestSession(t *testing.T, fs *fakeServer, scope Scope, opts Options) (*Session, *gateway.Client, func()) {
	t.Helper()
	ts := httptest.NewServer(fs)
	gw := gateway.New(gateway.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})
	if opts.SearchDebounce == 0 {
		opts.SearchDebounce = 5 * time.Millisecond
	}
	s := NewSession(gw, scope, opts)
	cleanup := func() {
		s.Close()
		ts.Close()
	}
	return s, gw, cleanup
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
