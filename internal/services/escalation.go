package services

import (
	"rld/internal/models"
	"time"
)

const (
	firstRateLimit   = time.Hour
	secondRateLimit  = 6 * time.Hour
	quotaReduction   = 7 * 24 * time.Hour
	temporaryBan     = 24 * time.Hour
	extendedBan      = 7 * 24 * time.Hour
	permanentBanFrom = 5
)

// EscalationPlan is what a single violation at a given count does. Each
// count has its own fixed plan; plans do not stack.
type EscalationPlan struct {
	Consequences   []models.Consequence
	RateLimitLevel int
	RateLimitFor   time.Duration
	ReduceQuotaFor time.Duration
	BanFor         time.Duration
	Permanent      bool
	FlagForReview  bool
	RequireManual  bool
}

// Escalate maps the post-increment violation count and type to a plan.
// It is pure: the same inputs always produce the same plan.
func Escalate(count int64, vt models.ViolationType) EscalationPlan {
	var p EscalationPlan
	switch {
	case count <= 0:
		return p
	case count == 1:
		p.Consequences = []models.Consequence{models.ConsequenceWarning, models.ConsequenceRateLimit}
		p.RateLimitLevel = 1
		p.RateLimitFor = firstRateLimit
	case count == 2:
		p.Consequences = []models.Consequence{models.ConsequenceFinalWarning, models.ConsequenceRateLimit, models.ConsequenceQuotaReduced}
		p.RateLimitLevel = 2
		p.RateLimitFor = secondRateLimit
		p.ReduceQuotaFor = quotaReduction
	case count == 3:
		p.Consequences = []models.Consequence{models.ConsequenceTemporaryBan}
		p.BanFor = temporaryBan
	case count == 4:
		p.Consequences = []models.Consequence{models.ConsequenceExtendedBan}
		p.BanFor = extendedBan
	default:
		p.Consequences = []models.Consequence{models.ConsequencePermanentBan, models.ConsequenceBlacklisted}
		p.Permanent = true
	}

	if vt.IsIdentitySpoofing() {
		if count == 1 {
			p.FlagForReview = true
			p.Consequences = append(p.Consequences, models.ConsequenceProfileFlagged)
		} else {
			p.RequireManual = true
			p.Consequences = append(p.Consequences, models.ConsequenceManualVerification)
		}
	}
	return p
}
