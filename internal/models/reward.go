package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RewardMode string

const (
	RewardInstant RewardMode = "instant"
	RewardStaked  RewardMode = "staked"
)

// ParseRewardMode accepts "stake" as an alias for staked, the way the
// bot's persisted reward_type values spell it.
func ParseRewardMode(s string) (RewardMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instant":
		return RewardInstant, nil
	case "staked", "stake":
		return RewardStaked, nil
	}
	return "", fmt.Errorf("%w: reward mode %q", ErrInvalidInput, s)
}

type EngagementSnapshot struct {
	Likes   int64 `json:"likes"`
	Reposts int64 `json:"reposts"`
}

// SnapshotFromFloat converts loosely typed counts (JSON numbers) into a
// snapshot, rejecting negative, fractional and non-finite values.
func SnapshotFromFloat(likes, reposts float64) (EngagementSnapshot, error) {
	for _, v := range [...]float64{likes, reposts} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) || v > math.MaxInt64/2 {
			return EngagementSnapshot{}, fmt.Errorf("%w: engagement count %v", ErrInvalidInput, v)
		}
	}
	return EngagementSnapshot{Likes: int64(likes), Reposts: int64(reposts)}, nil
}

type RewardQuote struct {
	Tier   int             `json:"tier"`
	Amount decimal.Decimal `json:"amount"`
	Mode   RewardMode      `json:"mode"`
}

// EngagementEvent is a candidate post submitted for pricing.
type EngagementEvent struct {
	Wallet  string     `json:"wallet"`
	PostID  string     `json:"postId"`
	Likes   int64      `json:"likes"`
	Reposts int64      `json:"reposts"`
	Mode    RewardMode `json:"mode,omitempty"`
}

const (
	RejectRestricted    = "restricted"
	RejectQuotaExceeded = "quota_exceeded"
	RejectUnavailable   = "ledger_unavailable"
)

type Admission struct {
	Allowed        bool             `json:"allowed"`
	Reason         string           `json:"reason,omitempty"`
	Restriction    RestrictionState `json:"restriction"`
	Degraded       bool             `json:"degraded,omitempty"`
	Quote          *RewardQuote     `json:"quote,omitempty"`
	StakeReleaseAt *time.Time       `json:"stakeReleaseAt,omitempty"`
}
