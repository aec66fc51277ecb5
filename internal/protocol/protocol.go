// Package protocol defines the storage API request/response types.
package protocol

import "time"

// EntryKind distinguishes folders from files.
type EntryKind string

const (
	KindFolder EntryKind = "folder"
	KindFile   EntryKind = "file"
)

// Entry is a single folder or file record as returned by listing calls.
// Files never have children; folders may.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      EntryKind `json:"kind"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsFolder reports whether the entry is a folder.
func (e Entry) IsFolder() bool { return e.Kind == KindFolder }

// PathSegment is one hop of an ancestor chain.
type PathSegment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Pagination describes the window of a listing response.
type Pagination struct {
	Offset       int `json:"offset"`
	Limit        int `json:"limit"`
	TotalFolders int `json:"total_folders"`
	TotalFiles   int `json:"total_files"`
}

// RootResponse is returned by GET /root.
type RootResponse struct {
	FolderID   string     `json:"folder_id"`
	Items      []Entry    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ListResponse is returned by GET /folder/{id}.
type ListResponse struct {
	Items      []Entry    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// SearchResult is one hit of a filename search. FolderPath is the full
// ancestor chain of the containing folder, scope root first.
type SearchResult struct {
	FileID     string        `json:"file_id"`
	Filename   string        `json:"filename"`
	Size       int64         `json:"size"`
	CreatedAt  time.Time     `json:"created_at"`
	FolderPath []PathSegment `json:"folder_path"`
}

// SearchResponse is returned by GET /search.
type SearchResponse struct {
	Items []SearchResult `json:"items"`
	Limit int            `json:"limit"`
}

// StatusResponse is the quota snapshot returned by GET /status.
// A total of 0 means unlimited, never "no quota".
type StatusResponse struct {
	TotalAllowedStorageGB   float64 `json:"total_allowed_storage_gb"`
	UsedStorageGB           float64 `json:"used_storage_gb"`
	TotalAllowedBandwidthGB float64 `json:"total_allowed_bandwidth_gb"`
	UsedBandwidthGB         float64 `json:"used_bandwidth_gb"`
	IsBandwidthLimited      bool    `json:"is_bandwidth_limited"`
	AddonSlots              int     `json:"addon_slots"`
}

// CreateFolderRequest is the body for POST /folders/create.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
	UserID   string `json:"user_id,omitempty"`
}

// RenameRequest is the body for POST /folders/{id}/rename and
// POST /files/{id}/rename.
type RenameRequest struct {
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

// MoveRequest is the body for POST /folders/{id}/move and
// POST /files/{id}/move.
type MoveRequest struct {
	ParentID string `json:"parent_id"`
	UserID   string `json:"user_id,omitempty"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	FileID    string `json:"file_id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// OrgUser is one member of the organization directory.
type OrgUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// OrgUsersResponse is returned by GET /org/users.
type OrgUsersResponse struct {
	Users []OrgUser `json:"users"`
}

// OrgDevice is one registered device of a user.
type OrgDevice struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname,omitempty"`
}

// OrgDevicesResponse is returned by GET /org/devices.
type OrgDevicesResponse struct {
	Devices []OrgDevice `json:"devices"`
}

// ErrorResponse is returned on API errors. Code carries the machine-readable
// error kind (see gateway.Kind), Error the human-readable message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
