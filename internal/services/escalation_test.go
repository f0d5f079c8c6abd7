package services

import (
	"rld/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscalate_Ladder(t *testing.T) {
	p := Escalate(1, models.ViolationOriginality)
	assert.Equal(t, []models.Consequence{models.ConsequenceWarning, models.ConsequenceRateLimit}, p.Consequences)
	assert.Equal(t, 1, p.RateLimitLevel)
	assert.Equal(t, time.Hour, p.RateLimitFor)

	p = Escalate(2, models.ViolationOriginality)
	assert.Equal(t, []models.Consequence{models.ConsequenceFinalWarning, models.ConsequenceRateLimit, models.ConsequenceQuotaReduced}, p.Consequences)
	assert.Equal(t, 2, p.RateLimitLevel)
	assert.Equal(t, 6*time.Hour, p.RateLimitFor)
	assert.Equal(t, 7*24*time.Hour, p.ReduceQuotaFor)

	p = Escalate(3, models.ViolationOriginality)
	assert.Equal(t, []models.Consequence{models.ConsequenceTemporaryBan}, p.Consequences)
	assert.Equal(t, 24*time.Hour, p.BanFor)
	assert.Zero(t, p.RateLimitFor)

	p = Escalate(4, models.ViolationOriginality)
	assert.Equal(t, []models.Consequence{models.ConsequenceExtendedBan}, p.Consequences)
	assert.Equal(t, 7*24*time.Hour, p.BanFor)

	for _, n := range []int64{5, 6, 100} {
		p = Escalate(n, models.ViolationOriginality)
		assert.True(t, p.Permanent)
		assert.Equal(t, []models.Consequence{models.ConsequencePermanentBan, models.ConsequenceBlacklisted}, p.Consequences)
	}
}

func TestEscalate_ZeroCountIsEmpty(t *testing.T) {
	assert.Empty(t, Escalate(0, models.ViolationIdentitySpoofing).Consequences)
}

func TestEscalate_SpoofingOverlay(t *testing.T) {
	p := Escalate(1, models.ViolationIdentitySpoofing)
	assert.True(t, p.FlagForReview)
	assert.False(t, p.RequireManual)
	assert.Contains(t, p.Consequences, models.ConsequenceProfileFlagged)
	assert.Equal(t, time.Hour, p.RateLimitFor)

	for _, n := range []int64{2, 3, 7} {
		p = Escalate(n, models.ViolationIdentitySpoofing)
		assert.True(t, p.RequireManual, "count %d", n)
		assert.Contains(t, p.Consequences, models.ConsequenceManualVerification)
	}
}

func TestEscalate_Deterministic(t *testing.T) {
	for n := int64(1); n <= 6; n++ {
		assert.Equal(t, Escalate(n, models.ViolationContentAppropriateness), Escalate(n, models.ViolationContentAppropriateness))
	}
}

func TestPlanState(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, models.RestrictionRateLimited, planState(Escalate(1, models.ViolationOriginality), now).Kind)
	assert.Equal(t, models.RestrictionManualVerification, planState(Escalate(2, models.ViolationIdentitySpoofing), now).Kind)
	assert.Equal(t, models.RestrictionTemporaryBan, planState(Escalate(3, models.ViolationOriginality), now).Kind)
	assert.Equal(t, models.RestrictionPermanentBan, planState(Escalate(5, models.ViolationOriginality), now).Kind)
	assert.Equal(t, models.RestrictionClear, planState(EscalationPlan{}, now).Kind)
}
