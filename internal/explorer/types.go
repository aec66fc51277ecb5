package explorer

import (
	"io"
	"time"

	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// Scope is the (user, device) pair the explorer is rooted at.
// An empty UserID means "self".
type Scope struct {
	UserID   string
	DeviceID string
}

// ListingPage is the accumulated page state of the currently open folder.
// Items grows by appending on LoadMore and is replaced wholesale on any
// folder change.
type ListingPage struct {
	FolderID     string
	Items        []protocol.Entry
	Offset       int
	Limit        int
	TotalFolders int
	TotalFiles   int
}

// HasMore reports whether another page can be appended.
func (p ListingPage) HasMore() bool {
	return len(p.Items) < p.TotalFolders+p.TotalFiles
}

// Quota is the server-reported usage snapshot for the active user.
// The client displays it and reacts to it but never infers beyond it.
type Quota struct {
	StorageTotalGB   float64
	StorageUsedGB    float64
	BandwidthTotalGB float64
	BandwidthUsedGB  float64
	BandwidthLimited bool
	AddonSlots       int
}

// StorageRemainingGB returns the remaining storage. Meaningless when
// Unlimited.
func (q Quota) StorageRemainingGB() float64 {
	return q.StorageTotalGB - q.StorageUsedGB
}

// Unlimited reports whether the account has no storage cap. A total of 0
// means unlimited, never "zero quota".
func (q Quota) Unlimited() bool {
	return q.StorageTotalGB == 0
}

// LimitExceeded reports whether the storage quota is exhausted.
func (q Quota) LimitExceeded() bool {
	return q.StorageTotalGB > 0 && q.StorageRemainingGB() <= 0
}

// UploadStatus is the state of one queued upload.
type UploadStatus string

const (
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusDone      UploadStatus = "done"
	UploadStatusError     UploadStatus = "error"
)

// UploadTask tracks one file through the upload queue.
type UploadTask struct {
	ID       int64
	Name     string
	Status   UploadStatus
	Err      string
	Finished time.Time
}

// UploadFile is one file handed to the upload queue.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// Options configures a Session.
type Options struct {
	PageLimit      int
	SearchLimit    int
	SearchDebounce time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageLimit <= 0 {
		o.PageLimit = 50
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 50
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = 300 * time.Millisecond
	}
	return o
}
