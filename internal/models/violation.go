package models

import (
	"fmt"
	"strings"
	"time"
)

type ViolationType string

const (
	ViolationIdentitySpoofing       ViolationType = "identity_spoofing"
	ViolationContentAppropriateness ViolationType = "content_appropriateness"
	ViolationEngagementLegitimacy   ViolationType = "engagement_legitimacy"
	ViolationOriginality            ViolationType = "originality"
	ViolationLowConfidence          ViolationType = "low_confidence"
)

// violationPriority orders classifications, highest first.
var violationPriority = map[ViolationType]int{
	ViolationIdentitySpoofing:       5,
	ViolationContentAppropriateness: 4,
	ViolationEngagementLegitimacy:   3,
	ViolationOriginality:            2,
	ViolationLowConfidence:          1,
}

// ParseViolationType maps a label to a known type. Unknown labels come back
// as ViolationLowConfidence together with ErrUnknownViolationType so callers
// can log and carry on.
func ParseViolationType(s string) (ViolationType, error) {
	t := ViolationType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := violationPriority[t]; ok {
		return t, nil
	}
	return ViolationLowConfidence, fmt.Errorf("%w: %q", ErrUnknownViolationType, s)
}

func (t ViolationType) Priority() int {
	return violationPriority[t]
}

func (t ViolationType) IsIdentitySpoofing() bool {
	return t == ViolationIdentitySpoofing
}

// HighestPriority picks the single label an event is recorded under when
// several verification checks fail at once.
func HighestPriority(types ...ViolationType) ViolationType {
	best := ViolationLowConfidence
	for _, t := range types {
		if t.Priority() > best.Priority() {
			best = t
		}
	}
	return best
}

type Consequence string

const (
	ConsequenceWarning            Consequence = "warning"
	ConsequenceFinalWarning       Consequence = "final_warning"
	ConsequenceRateLimit          Consequence = "rate_limit"
	ConsequenceQuotaReduced       Consequence = "quota_reduced"
	ConsequenceTemporaryBan       Consequence = "temporary_ban"
	ConsequenceExtendedBan        Consequence = "extended_ban"
	ConsequencePermanentBan       Consequence = "permanent_ban"
	ConsequenceBlacklisted        Consequence = "blacklisted"
	ConsequenceProfileFlagged     Consequence = "profile_flagged"
	ConsequenceManualVerification Consequence = "manual_verification_required"
)

// ViolationEvent is one entry of an identity's violation history.
// MaxEncodedEventSize bounds the JSON encoding of one ViolationEvent,
// including its list separator.
const MaxEncodedEventSize = 192

type ViolationEvent struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       ViolationType `json:"type"`
	Confidence float64       `json:"confidence"`
}

type ViolationOutcome struct {
	Identity     string           `json:"identity"`
	Count        int64            `json:"count"`
	Type         ViolationType    `json:"type"`
	Consequences []Consequence    `json:"consequences"`
	Restriction  RestrictionState `json:"restriction"`
	Degraded     bool             `json:"degraded,omitempty"`
}

func (o ViolationOutcome) Has(c Consequence) bool {
	for _, v := range o.Consequences {
		if v == c {
			return true
		}
	}
	return false
}
