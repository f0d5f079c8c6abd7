package services

import (
	"fmt"
	"rld/internal/models"

	"github.com/shopspring/decimal"
)

type RewardCalculatorInterface interface {
	Compute(likes, reposts int64, mode models.RewardMode) (models.RewardQuote, error)
}

type rewardTier struct {
	tier       int
	minLikes   int64
	minReposts int64
	base       int64
}

// Ordered highest first; persisted quotes depend on these exact values.
var rewardTiers = [...]rewardTier{
	{tier: 5, minLikes: 1000, minReposts: 100, base: 50},
	{tier: 4, minLikes: 500, minReposts: 50, base: 25},
	{tier: 3, minLikes: 100, minReposts: 10, base: 5},
	{tier: 2, minLikes: 50, minReposts: 5, base: 2},
	{tier: 1, minLikes: 25, minReposts: 0, base: 1},
}

var (
	instantRate = decimal.RequireFromString("0.9")
	stakeBonus  = decimal.RequireFromString("1.15")
	stakeFee    = decimal.RequireFromString("0.95")
)

type RewardCalculator struct{}

func NewRewardCalculator() RewardCalculatorInterface {
	return &RewardCalculator{}
}

func (rc *RewardCalculator) Compute(likes, reposts int64, mode models.RewardMode) (models.RewardQuote, error) {
	if likes < 0 || reposts < 0 {
		return models.RewardQuote{}, fmt.Errorf("%w: negative engagement (likes=%d, reposts=%d)", models.ErrInvalidInput, likes, reposts)
	}
	if mode != models.RewardInstant && mode != models.RewardStaked {
		return models.RewardQuote{}, fmt.Errorf("%w: reward mode %q", models.ErrInvalidInput, mode)
	}

	for _, t := range rewardTiers {
		if likes >= t.minLikes && reposts >= t.minReposts {
			return models.RewardQuote{
				Tier:   t.tier,
				Amount: scaleAmount(decimal.NewFromInt(t.base), mode),
				Mode:   mode,
			}, nil
		}
	}
	return models.RewardQuote{Tier: 0, Amount: decimal.Zero, Mode: mode}, nil
}

// scaleAmount applies the 10% instant cash-out discount, or the 15% staking
// bonus less the 5% fee, rounded half away from zero to cents.
func scaleAmount(base decimal.Decimal, mode models.RewardMode) decimal.Decimal {
	if mode == models.RewardInstant {
		return base.Mul(instantRate).Round(2)
	}
	return base.Mul(stakeBonus).Mul(stakeFee).Round(2)
}
