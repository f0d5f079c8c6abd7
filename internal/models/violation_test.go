package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViolationType_Known(t *testing.T) {
	vt, err := ParseViolationType("Identity_Spoofing ")
	require.NoError(t, err)
	assert.Equal(t, ViolationIdentitySpoofing, vt)
	assert.True(t, vt.IsIdentitySpoofing())
}

func TestParseViolationType_UnknownFallsBackToLowConfidence(t *testing.T) {
	vt, err := ParseViolationType("deepfake")
	assert.True(t, errors.Is(err, ErrUnknownViolationType))
	assert.Equal(t, ViolationLowConfidence, vt)
}

func TestHighestPriority(t *testing.T) {
	assert.Equal(t, ViolationIdentitySpoofing, HighestPriority(
		ViolationOriginality, ViolationIdentitySpoofing, ViolationContentAppropriateness))
	assert.Equal(t, ViolationContentAppropriateness, HighestPriority(
		ViolationEngagementLegitimacy, ViolationContentAppropriateness))
	assert.Equal(t, ViolationEngagementLegitimacy, HighestPriority(
		ViolationOriginality, ViolationEngagementLegitimacy, ViolationLowConfidence))
	assert.Equal(t, ViolationLowConfidence, HighestPriority())
	assert.Equal(t, ViolationLowConfidence, HighestPriority(ViolationType("bogus")))
}

func TestViolationOutcome_Has(t *testing.T) {
	o := ViolationOutcome{Consequences: []Consequence{ConsequenceWarning, ConsequenceRateLimit}}
	assert.True(t, o.Has(ConsequenceRateLimit))
	assert.False(t, o.Has(ConsequencePermanentBan))
}
