package providers

import (
	"fmt"
	"rld/internal/models"
	"rld/internal/storage"
	"rld/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidatorInterface interface {
	Validate() error
}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) CnfValidatorInterface {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}
	if cv.conf.Store.Backend == "redis" && cv.conf.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis backend")
	}
	if cv.conf.Ledger.HistoryLimit < 0 {
		return fmt.Errorf("ledger.historyLimit must not be negative")
	}
	if err := cv.validateHistoryFits(); err != nil {
		return err
	}
	if cv.conf.Rewards.DailyQuota < 0 {
		return fmt.Errorf("rewards.dailyQuota must not be negative")
	}
	return nil
}

// longest history key: prefix, 35-char wallet, concern
const historyKeyLen = len("rld:") + 35 + len(":history")

// validateHistoryFits rejects memory configs where a full history list would
// exceed the largest entry freecache accepts.
func (cv *CnfValidator) validateHistoryFits() error {
	if cv.conf.Store.Backend != "memory" || cv.conf.Ledger.HistoryLimit == 0 {
		return nil
	}
	maxItems := (storage.MaxEntrySize(cv.conf.Store.Size) - historyKeyLen - 2) / models.MaxEncodedEventSize
	if cv.conf.Ledger.HistoryLimit > maxItems {
		return fmt.Errorf("ledger.historyLimit %d does not fit store.size %dMB (at most %d)",
			cv.conf.Ledger.HistoryLimit, cv.conf.Store.Size, maxItems)
	}
	return nil
}
