package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway error into the categories the explorer reacts to.
type Kind string

const (
	KindPermissionDenied       Kind = "permission_denied"
	KindStorageLimitExceeded   Kind = "storage_limit_exceeded"
	KindBandwidthLimitExceeded Kind = "bandwidth_limit_exceeded"
	KindInvalidFolder          Kind = "invalid_folder"
	KindFileNotFound           Kind = "file_not_found"
	KindUploadsDisabled        Kind = "uploads_disabled"
	KindRateLimited            Kind = "rate_limited"
	KindStorageUnavailable     Kind = "storage_unavailable"
	KindReadOnly               Kind = "read_only"
	KindTransport              Kind = "transport"
	KindInternal               Kind = "internal"
)

// Error is a typed gateway error carrying the server's error kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the error kind, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ErrReadOnly is returned for mutating calls while read-only mode is set.
// The call is short-circuited client-side, no request is issued.
var ErrReadOnly = &Error{Kind: KindReadOnly, Message: "client is in read-only mode"}

// kindFromCode maps a server error code string to a Kind.
func kindFromCode(code string) (Kind, bool) {
	switch Kind(code) {
	case KindPermissionDenied, KindStorageLimitExceeded, KindBandwidthLimitExceeded,
		KindInvalidFolder, KindFileNotFound, KindUploadsDisabled,
		KindRateLimited, KindStorageUnavailable, KindReadOnly:
		return Kind(code), true
	}
	return "", false
}

// kindFromStatus maps an HTTP status to a Kind when the body carries no code.
func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusNotFound:
		return KindFileNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusServiceUnavailable:
		return KindStorageUnavailable
	case http.StatusInsufficientStorage:
		return KindStorageLimitExceeded
	}
	return KindInternal
}
