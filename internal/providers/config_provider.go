package providers

import (
	"fmt"
	"path/filepath"
	"rld/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)

	v.BindEnv("logger.level", "RLD_LOG_LEVEL")
	v.BindEnv("store.backend", "RLD_STORE_BACKEND")
	v.BindEnv("store.redis.addr", "RLD_REDIS_ADDR")
	v.BindEnv("store.redis.password", "RLD_REDIS_PASSWORD")
	v.BindEnv("rewards.mode", "RLD_REWARD_MODE")
	v.BindEnv("admin.key", "RLD_ADMIN_KEY")
	v.BindEnv("ledger.failOpen", "RLD_FAIL_OPEN")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "RewardLedgerDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.size", 64)
	v.SetDefault("ledger.storeTimeout", 2*time.Second)
	v.SetDefault("ledger.counterWindow", 7*24*time.Hour)
	v.SetDefault("ledger.historyLimit", 50)
	v.SetDefault("ledger.failOpen", true)
	v.SetDefault("rewards.mode", "staked")
	v.SetDefault("rewards.dailyQuota", 10)
	v.SetDefault("rateLimit.requestsPerMinute", 20)
	v.SetDefault("rateLimit.burst", 5)
}
