package models

import "time"

type RestrictionKind string

const (
	RestrictionClear              RestrictionKind = "clear"
	RestrictionRateLimited        RestrictionKind = "rate_limited"
	RestrictionTemporaryBan       RestrictionKind = "temporary_ban"
	RestrictionPermanentBan       RestrictionKind = "permanent_ban"
	RestrictionManualVerification RestrictionKind = "requires_manual_verification"
)

// RestrictionState is the punitive status of an identity. Level is set for
// RateLimited, ExpiresAt for RateLimited and TemporaryBan.
type RestrictionState struct {
	Kind      RestrictionKind `json:"kind"`
	Level     int             `json:"level,omitempty"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

func Clear() RestrictionState {
	return RestrictionState{Kind: RestrictionClear}
}

func RateLimited(level int, expiresAt time.Time) RestrictionState {
	return RestrictionState{Kind: RestrictionRateLimited, Level: level, ExpiresAt: &expiresAt}
}

func TemporaryBan(expiresAt time.Time) RestrictionState {
	return RestrictionState{Kind: RestrictionTemporaryBan, ExpiresAt: &expiresAt}
}

func PermanentBan() RestrictionState {
	return RestrictionState{Kind: RestrictionPermanentBan}
}

func RequiresManualVerification() RestrictionState {
	return RestrictionState{Kind: RestrictionManualVerification}
}

func (s RestrictionState) IsClear() bool {
	return s.Kind == "" || s.Kind == RestrictionClear
}

// Blocks reports whether the state forbids rewarded activity. A rate limit
// only throttles and does not block.
func (s RestrictionState) Blocks() bool {
	switch s.Kind {
	case RestrictionTemporaryBan, RestrictionPermanentBan, RestrictionManualVerification:
		return true
	}
	return false
}

// BanRecord is stored under the ban key. Permanent records carry no expiry.
type BanRecord struct {
	Reason    string    `json:"reason"`
	Count     int64     `json:"count"`
	Permanent bool      `json:"permanent"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type RateLimitRecord struct {
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FlagRecord backs the blacklist, manual verification, review and quota
// markers.
type FlagRecord struct {
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// ViolationRecord is the assembled view of everything the ledger holds for
// one identity.
type ViolationRecord struct {
	Identity      string           `json:"identity"`
	Count         int64            `json:"count"`
	Restriction   RestrictionState `json:"restriction"`
	Blacklisted   bool             `json:"blacklisted"`
	FlaggedReview bool             `json:"flaggedForReview"`
	QuotaReduced  bool             `json:"quotaReduced"`
	History       []ViolationEvent `json:"history"`
}
