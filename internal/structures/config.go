package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Enabled      bool          `yaml:"enabled"`
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend" validate:"required|in:memory,redis"`
	Size    int         `yaml:"size"`
	Redis   RedisConfig `yaml:"redis"`
}

type LedgerConfig struct {
	StoreTimeout  time.Duration `yaml:"storeTimeout"`
	CounterWindow time.Duration `yaml:"counterWindow"`
	HistoryLimit  int           `yaml:"historyLimit"`
	FailOpen      bool          `yaml:"failOpen"`
}

type RewardsConfig struct {
	Mode       string `yaml:"mode" validate:"required|in:instant,staked"`
	DailyQuota int    `yaml:"dailyQuota"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

type AdminConfig struct {
	Key string `yaml:"key"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Store       StoreConfig     `yaml:"store"`
	Ledger      LedgerConfig    `yaml:"ledger"`
	Rewards     RewardsConfig   `yaml:"rewards"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Admin       AdminConfig     `yaml:"admin"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
