package services

import "time"

const keyPrefix = "rld:"

const (
	concernCounter   = "violations"
	concernRateLimit = "ratelimit"
	concernQuota     = "quota"
	concernBan       = "ban"
	concernBlacklist = "blacklist"
	concernVerify    = "verify"
	concernReview    = "review"
	concernHistory   = "history"
	concernDaily     = "daily:"
)

// ledgerKey namespaces a key per identity and concern so that the expiry
// of one concern never touches another.
func ledgerKey(identity, concern string) string {
	return keyPrefix + identity + ":" + concern
}

func dailyKey(identity string, day time.Time) string {
	return ledgerKey(identity, concernDaily+day.UTC().Format("20060102"))
}

// violationKeys lists every key the ledger may hold for an identity,
// except the per-day quota counters.
func violationKeys(identity string) []string {
	concerns := []string{
		concernCounter, concernRateLimit, concernQuota, concernBan,
		concernBlacklist, concernVerify, concernReview, concernHistory,
	}
	keys := make([]string, len(concerns))
	for i, c := range concerns {
		keys[i] = ledgerKey(identity, c)
	}
	return keys
}
