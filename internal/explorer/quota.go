package explorer

import (
	"context"

	"github.com/webszilla/work-zilla-explorer/internal/metrics"
)

// RefreshQuota fetches a fresh quota snapshot and replaces the cached value
// wholesale. Called after scope changes, successful mutations, and every
// successful upload step.
func (s *Session) RefreshQuota(ctx context.Context) error {
	s.mu.Lock()
	userID := s.scope.UserID
	s.mu.Unlock()

	resp, err := s.gw.Status(ctx, userID)
	if err != nil {
		s.publishError(err)
		return err
	}

	q := Quota{
		StorageTotalGB:   resp.TotalAllowedStorageGB,
		StorageUsedGB:    resp.UsedStorageGB,
		BandwidthTotalGB: resp.TotalAllowedBandwidthGB,
		BandwidthUsedGB:  resp.UsedBandwidthGB,
		BandwidthLimited: resp.IsBandwidthLimited,
		AddonSlots:       resp.AddonSlots,
	}

	s.mu.Lock()
	s.quota = q
	s.mu.Unlock()

	metrics.RecordQuotaRefresh()
	s.publish(Event{Type: EventQuota})
	return nil
}

// Quota returns the cached quota snapshot.
func (s *Session) Quota() Quota {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quota
}

// LimitBanner reports whether the storage-limit banner should show: either
// the snapshot says the quota is exhausted, or an upload failed with
// storage_limit_exceeded earlier in this session (sticky).
func (s *Session) LimitBanner() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limitBanner || s.quota.LimitExceeded()
}

// ClearLimitBanner drops the sticky part of the banner. The derived part
// reappears as long as the snapshot reports an exhausted quota.
func (s *Session) ClearLimitBanner() {
	s.mu.Lock()
	s.limitBanner = false
	s.mu.Unlock()
	s.publish(Event{Type: EventQuota})
}
