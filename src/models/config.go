package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Rates     MRatesConfig     `yaml:"rates"`
	WebSocket MWebSocketConfig `yaml:"websocket"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // file, sqlite or postgres
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MRatesConfig struct {
	BaseURL             string   `yaml:"base_url"`
	MaxDays             int      `yaml:"max_days"`
	FetchTimeoutSeconds int      `yaml:"fetch_timeout"`
	DefaultCurrencies   []string `yaml:"default_currencies"`
	CacheTTLMinutes     int      `yaml:"cache_ttl_minutes"`
}

type MWebSocketConfig struct {
	WriteWaitSeconds int   `yaml:"write_wait"`
	PongWaitSeconds  int   `yaml:"pong_wait"`
	MaxMessageSize   int64 `yaml:"max_message_size"`
	SendBuffer       int   `yaml:"send_buffer"`
}
