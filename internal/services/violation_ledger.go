package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/storage"
	"rld/internal/structures"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	defaultStoreTimeout  = 2 * time.Second
	defaultCounterWindow = 7 * 24 * time.Hour
	defaultHistoryLimit  = 50
	defaultManualBlock   = 7 * 24 * time.Hour
	dailyQuotaWindow     = 25 * time.Hour
)

type ViolationLedgerInterface interface {
	RecordViolation(ctx context.Context, identity string, vt models.ViolationType, confidence float64) (models.ViolationOutcome, error)
	GetRestrictionStatus(ctx context.Context, identity string) (models.RestrictionState, error)
	GetRecord(ctx context.Context, identity string) (models.ViolationRecord, error)
	History(ctx context.Context, identity string) ([]models.ViolationEvent, error)
	ConsumeDailyQuota(ctx context.Context, identity string, quota int) (bool, error)
	Block(ctx context.Context, identity string, duration time.Duration, reason string) error
	Clear(ctx context.Context, identity string) error
}

// ViolationLedger tracks per-identity violations in a key-value store and
// escalates restrictions. Store failures never escape as hard errors: they
// are logged and reported as models.ErrLedgerUnavailable next to a
// best-effort result.
type ViolationLedger struct {
	store         storage.Store
	clock         storage.Clock
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
	timeout       time.Duration
	counterWindow time.Duration
	historyLimit  int
}

func NewViolationLedger(conf *structures.Config, store storage.Store, clock storage.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) ViolationLedgerInterface {
	l := &ViolationLedger{
		store:         store,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
		timeout:       conf.Ledger.StoreTimeout,
		counterWindow: conf.Ledger.CounterWindow,
		historyLimit:  conf.Ledger.HistoryLimit,
	}
	if l.timeout <= 0 {
		l.timeout = defaultStoreTimeout
	}
	if l.counterWindow <= 0 {
		l.counterWindow = defaultCounterWindow
	}
	if l.historyLimit <= 0 {
		l.historyLimit = defaultHistoryLimit
	}
	return l
}

func (l *ViolationLedger) unavailable(op, identity string, err error) error {
	l.metrics.IncLedgerErrors(op)
	l.logger.Errorf(providers.TypeLedger, "%s %s: store failure: %s", op, identity, err)
	return fmt.Errorf("%w: %s: %w", models.ErrLedgerUnavailable, op, err)
}

func checkIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: empty identity", models.ErrInvalidIdentity)
	}
	return nil
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Min(math.Max(c, 0), 100)
}

func (l *ViolationLedger) RecordViolation(ctx context.Context, identity string, vt models.ViolationType, confidence float64) (models.ViolationOutcome, error) {
	if err := checkIdentity(identity); err != nil {
		return models.ViolationOutcome{}, err
	}
	if vt.Priority() == 0 {
		l.logger.Warnf(providers.TypeLedger, "%s: %s, recording as %s", identity, fmt.Errorf("%w: %q", models.ErrUnknownViolationType, vt), models.ViolationLowConfidence)
		vt = models.ViolationLowConfidence
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	outcome := models.ViolationOutcome{
		Identity:    identity,
		Type:        vt,
		Restriction: models.Clear(),
	}

	count, err := l.store.Increment(ctx, ledgerKey(identity, concernCounter), l.counterWindow)
	if err != nil {
		outcome.Degraded = true
		return outcome, l.unavailable("record", identity, err)
	}
	outcome.Count = count
	l.metrics.IncViolations(string(vt))

	now := l.clock.Now()
	var errs []error

	event := models.ViolationEvent{
		ID:         uuid.NewString(),
		Timestamp:  now.UTC(),
		Type:       vt,
		Confidence: clampConfidence(confidence),
	}
	if raw, err := json.Marshal(event); err != nil {
		errs = append(errs, err)
	} else if err := l.store.Push(ctx, ledgerKey(identity, concernHistory), raw, l.historyLimit, l.counterWindow); err != nil {
		errs = append(errs, err)
	}

	plan := Escalate(count, vt)
	if err := l.apply(ctx, identity, count, vt, plan, now); err != nil {
		errs = append(errs, err)
	}
	outcome.Consequences = plan.Consequences
	for _, c := range plan.Consequences {
		l.metrics.IncConsequences(string(c))
	}

	state, err := l.resolve(ctx, identity, now)
	if err != nil {
		errs = append(errs, err)
		state = planState(plan, now)
	}
	outcome.Restriction = state

	l.logger.Infof(providers.TypeLedger, "violation %s type=%s count=%d consequences=%v restriction=%s",
		identity, vt, count, plan.Consequences, state.Kind)

	if len(errs) > 0 {
		outcome.Degraded = true
		return outcome, l.unavailable("record", identity, errors.Join(errs...))
	}
	return outcome, nil
}

// planState is the restriction a plan produces on its own, used when the
// store cannot be read back.
func planState(p EscalationPlan, now time.Time) models.RestrictionState {
	switch {
	case p.Permanent:
		return models.PermanentBan()
	case p.BanFor > 0:
		return models.TemporaryBan(now.Add(p.BanFor))
	case p.RequireManual:
		return models.RequiresManualVerification()
	case p.RateLimitFor > 0:
		return models.RateLimited(p.RateLimitLevel, now.Add(p.RateLimitFor))
	}
	return models.Clear()
}

func (l *ViolationLedger) apply(ctx context.Context, identity string, count int64, vt models.ViolationType, p EscalationPlan, now time.Time) error {
	var errs []error
	reason := fmt.Sprintf("%s violation #%d", vt, count)

	if p.RateLimitFor > 0 {
		rec := models.RateLimitRecord{Level: p.RateLimitLevel, CreatedAt: now, ExpiresAt: now.Add(p.RateLimitFor)}
		errs = append(errs, l.put(ctx, ledgerKey(identity, concernRateLimit), rec, p.RateLimitFor))
	} else {
		// a ban replaces the rate limit instead of stacking on it
		errs = append(errs, l.store.Delete(ctx, ledgerKey(identity, concernRateLimit)))
	}

	if p.ReduceQuotaFor > 0 {
		rec := models.FlagRecord{Reason: reason, CreatedAt: now, ExpiresAt: now.Add(p.ReduceQuotaFor)}
		errs = append(errs, l.put(ctx, ledgerKey(identity, concernQuota), rec, p.ReduceQuotaFor))
	}

	switch {
	case p.Permanent:
		ban := models.BanRecord{Reason: reason, Count: count, Permanent: true, CreatedAt: now}
		errs = append(errs, l.put(ctx, ledgerKey(identity, concernBan), ban, 0))
		entry := models.FlagRecord{Reason: reason, CreatedAt: now}
		errs = append(errs, l.put(ctx, ledgerKey(identity, concernBlacklist), entry, 0))
		l.logger.Warnf(providers.TypeLedger, "%s permanently banned and blacklisted", identity)
	case p.BanFor > 0:
		key := ledgerKey(identity, concernBan)
		ban := models.BanRecord{Reason: reason, Count: count, CreatedAt: now, ExpiresAt: now.Add(p.BanFor)}
		var current models.BanRecord
		found, err := l.load(ctx, key, &current)
		if err != nil {
			errs = append(errs, err)
		}
		// a ladder ban never shortens a longer one already in place
		if found && (current.Permanent || current.ExpiresAt.After(ban.ExpiresAt)) {
			l.logger.Infof(providers.TypeLedger, "%s keeps existing ban (%s) over %s", identity, current.Reason, reason)
		} else {
			errs = append(errs, l.put(ctx, key, ban, p.BanFor))
		}
	}

	if p.FlagForReview {
		rec := models.FlagRecord{Reason: reason, CreatedAt: now, ExpiresAt: now.Add(l.counterWindow)}
		errs = append(errs, l.put(ctx, ledgerKey(identity, concernReview), rec, l.counterWindow))
	}
	if p.RequireManual {
		rec := models.FlagRecord{Reason: reason, CreatedAt: now}
		errs = append(errs, l.put(ctx, ledgerKey(identity, concernVerify), rec, 0))
	}
	return errors.Join(errs...)
}

func (l *ViolationLedger) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return l.store.SetWithExpiry(ctx, key, raw, ttl)
}

// load decodes the record at key into v. It reports false for a missing key
// and wraps decode failures in models.ErrCorruptRecord.
func (l *ViolationLedger) load(ctx context.Context, key string, v any) (bool, error) {
	raw, err := l.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", models.ErrCorruptRecord, key, err)
	}
	return true, nil
}

func (l *ViolationLedger) GetRestrictionStatus(ctx context.Context, identity string) (models.RestrictionState, error) {
	if err := checkIdentity(identity); err != nil {
		return models.Clear(), err
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	state, err := l.resolve(ctx, identity, l.clock.Now())
	if err != nil {
		return models.Clear(), l.unavailable("status", identity, err)
	}
	return state, nil
}

// resolve applies the lookup order blacklist, ban, manual verification,
// rate limit. Anything missing or past its expiry reads as clear.
func (l *ViolationLedger) resolve(ctx context.Context, identity string, now time.Time) (models.RestrictionState, error) {
	var entry models.FlagRecord
	found, err := l.load(ctx, ledgerKey(identity, concernBlacklist), &entry)
	if err != nil {
		return models.Clear(), err
	}
	if found {
		return models.PermanentBan(), nil
	}

	var ban models.BanRecord
	found, err = l.load(ctx, ledgerKey(identity, concernBan), &ban)
	if err != nil {
		return models.Clear(), err
	}
	if found {
		if ban.Permanent {
			return models.PermanentBan(), nil
		}
		if ban.ExpiresAt.After(now) {
			return models.TemporaryBan(ban.ExpiresAt), nil
		}
	}

	var verify models.FlagRecord
	found, err = l.load(ctx, ledgerKey(identity, concernVerify), &verify)
	if err != nil {
		return models.Clear(), err
	}
	if found {
		return models.RequiresManualVerification(), nil
	}

	var rl models.RateLimitRecord
	found, err = l.load(ctx, ledgerKey(identity, concernRateLimit), &rl)
	if err != nil {
		return models.Clear(), err
	}
	if found && rl.ExpiresAt.After(now) {
		return models.RateLimited(rl.Level, rl.ExpiresAt), nil
	}
	return models.Clear(), nil
}

func (l *ViolationLedger) History(ctx context.Context, identity string) ([]models.ViolationEvent, error) {
	if err := checkIdentity(identity); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	events, err := l.history(ctx, identity)
	if err != nil {
		return nil, l.unavailable("history", identity, err)
	}
	return events, nil
}

func (l *ViolationLedger) history(ctx context.Context, identity string) ([]models.ViolationEvent, error) {
	raws, err := l.store.Range(ctx, ledgerKey(identity, concernHistory))
	if err != nil {
		return nil, err
	}
	events := make([]models.ViolationEvent, 0, len(raws))
	for _, raw := range raws {
		var ev models.ViolationEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: history entry: %v", models.ErrCorruptRecord, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (l *ViolationLedger) GetRecord(ctx context.Context, identity string) (models.ViolationRecord, error) {
	rec := models.ViolationRecord{Identity: identity, Restriction: models.Clear()}
	if err := checkIdentity(identity); err != nil {
		return rec, err
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	now := l.clock.Now()

	var errs []error
	raw, err := l.store.Get(ctx, ledgerKey(identity, concernCounter))
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		errs = append(errs, err)
	default:
		if _, err := fmt.Sscan(string(raw), &rec.Count); err != nil {
			errs = append(errs, fmt.Errorf("%w: counter %q", models.ErrCorruptRecord, raw))
		}
	}

	if rec.Restriction, err = l.resolve(ctx, identity, now); err != nil {
		errs = append(errs, err)
	}

	var flag models.FlagRecord
	if rec.Blacklisted, err = l.load(ctx, ledgerKey(identity, concernBlacklist), &flag); err != nil {
		errs = append(errs, err)
	}
	if rec.FlaggedReview, err = l.load(ctx, ledgerKey(identity, concernReview), &flag); err != nil {
		errs = append(errs, err)
	}
	if rec.QuotaReduced, err = l.load(ctx, ledgerKey(identity, concernQuota), &flag); err != nil {
		errs = append(errs, err)
	}
	if rec.History, err = l.history(ctx, identity); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return rec, l.unavailable("record_view", identity, errors.Join(errs...))
	}
	return rec, nil
}

// ConsumeDailyQuota counts one rewarded event against the identity's
// per-day quota and reports whether it still fits. The quota is halved
// while a quota reduction is active. A quota of zero means unlimited.
func (l *ViolationLedger) ConsumeDailyQuota(ctx context.Context, identity string, quota int) (bool, error) {
	if err := checkIdentity(identity); err != nil {
		return false, err
	}
	if quota <= 0 {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var flag models.FlagRecord
	reduced, err := l.load(ctx, ledgerKey(identity, concernQuota), &flag)
	if err != nil {
		return false, l.unavailable("quota", identity, err)
	}
	limit := int64(quota)
	if reduced {
		limit = max(limit/2, 1)
	}

	used, err := l.store.Increment(ctx, dailyKey(identity, l.clock.Now()), dailyQuotaWindow)
	if err != nil {
		return false, l.unavailable("quota", identity, err)
	}
	if used > limit {
		l.logger.Debugf(providers.TypeLedger, "%s over daily quota: %d/%d", identity, used, limit)
		return false, nil
	}
	return true, nil
}

// Block sets a manual ban without touching the violation counter.
func (l *ViolationLedger) Block(ctx context.Context, identity string, duration time.Duration, reason string) error {
	if err := checkIdentity(identity); err != nil {
		return err
	}
	if duration <= 0 {
		duration = defaultManualBlock
	}
	if reason == "" {
		reason = "manual admin block"
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	now := l.clock.Now()
	ban := models.BanRecord{Reason: reason, CreatedAt: now, ExpiresAt: now.Add(duration)}
	if err := l.put(ctx, ledgerKey(identity, concernBan), ban, duration); err != nil {
		return l.unavailable("block", identity, err)
	}
	l.logger.Warnf(providers.TypeLedger, "%s blocked for %s: %s", identity, duration, reason)
	return nil
}

// Clear is the administrative reset: it drops every restriction including
// permanent bans, the blacklist entry, the counter and the history.
func (l *ViolationLedger) Clear(ctx context.Context, identity string) error {
	if err := checkIdentity(identity); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.store.Delete(ctx, violationKeys(identity)...); err != nil {
		return l.unavailable("clear", identity, err)
	}
	l.logger.Warnf(providers.TypeLedger, "%s cleared by administrator", identity)
	return nil
}
