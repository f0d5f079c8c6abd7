package services

import (
	"context"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/storage"
	"rld/internal/structures"
	"time"
)

type EngagementGateInterface interface {
	Admit(ctx context.Context, event models.EngagementEvent) (models.Admission, error)
}

// EngagementGate is the admission step for an incoming engagement event:
// restriction check, daily quota, then pricing.
type EngagementGate struct {
	ledger      ViolationLedgerInterface
	calculator  RewardCalculatorInterface
	clock       storage.Clock
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	defaultMode models.RewardMode
	dailyQuota  int
	failOpen    bool
}

func NewEngagementGate(conf *structures.Config, ledger ViolationLedgerInterface, calculator RewardCalculatorInterface, clock storage.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) (EngagementGateInterface, error) {
	mode, err := models.ParseRewardMode(conf.Rewards.Mode)
	if err != nil {
		return nil, err
	}
	return &EngagementGate{
		ledger:      ledger,
		calculator:  calculator,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		defaultMode: mode,
		dailyQuota:  conf.Rewards.DailyQuota,
		failOpen:    conf.Ledger.FailOpen,
	}, nil
}

func (g *EngagementGate) reject(reason string, state models.RestrictionState) models.Admission {
	g.metrics.IncGateDecisions(reason)
	return models.Admission{Allowed: false, Reason: reason, Restriction: state}
}

func (g *EngagementGate) Admit(ctx context.Context, event models.EngagementEvent) (models.Admission, error) {
	if err := models.ValidateWallet(event.Wallet); err != nil {
		return models.Admission{}, err
	}
	mode := g.defaultMode
	if event.Mode != "" {
		parsed, err := models.ParseRewardMode(string(event.Mode))
		if err != nil {
			return models.Admission{}, err
		}
		mode = parsed
	}

	degraded := false
	state, err := g.ledger.GetRestrictionStatus(ctx, event.Wallet)
	if err != nil {
		if !g.failOpen {
			return g.reject(models.RejectUnavailable, models.Clear()), nil
		}
		g.logger.Warnf(providers.TypeReward, "admitting %s without restriction check: %s", event.Wallet, err)
		degraded = true
		state = models.Clear()
	}
	if state.Blocks() {
		g.logger.Infof(providers.TypeReward, "rejected %s post=%s: %s", event.Wallet, event.PostID, state.Kind)
		return g.reject(models.RejectRestricted, state), nil
	}

	within, err := g.ledger.ConsumeDailyQuota(ctx, event.Wallet, g.dailyQuota)
	if err != nil {
		if !g.failOpen {
			return g.reject(models.RejectUnavailable, state), nil
		}
		degraded = true
		within = true
	}
	if !within {
		return g.reject(models.RejectQuotaExceeded, state), nil
	}

	quote, err := g.calculator.Compute(event.Likes, event.Reposts, mode)
	if err != nil {
		return models.Admission{}, err
	}
	g.metrics.IncRewards(quote.Tier, string(quote.Mode))
	g.metrics.IncGateDecisions("allowed")

	adm := models.Admission{
		Allowed:     true,
		Restriction: state,
		Degraded:    degraded,
		Quote:       &quote,
	}
	if quote.Mode == models.RewardStaked && quote.Tier > 0 {
		release := MonthEnd(g.clock.Now())
		adm.StakeReleaseAt = &release
	}
	g.logger.Infof(providers.TypeReward, "admitted %s post=%s tier=%d amount=%s mode=%s",
		event.Wallet, event.PostID, quote.Tier, quote.Amount.StringFixed(2), quote.Mode)
	return adm, nil
}

// MonthEnd is the last second of t's month in UTC, when staked rewards
// are released.
func MonthEnd(t time.Time) time.Time {
	t = t.UTC()
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.Add(-time.Second)
}
