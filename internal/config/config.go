package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	DataPath       string `mapstructure:"data_path"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec"`
	Preload        bool   `mapstructure:"preload"`
	DefaultTopN    int    `mapstructure:"default_top_n"`
	PreviewRows    int    `mapstructure:"preview_rows"`
	Development    bool   `mapstructure:"development"`
}

// Load reads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHAINBOARD")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("data_path", "data/DataCoSupplyChainDataset.csv")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("preload", false)
	v.SetDefault("default_top_n", 10)
	v.SetDefault("preview_rows", 1000)
	v.SetDefault("development", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("chainboard")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// HTTPTimeout is the bounded timeout for URL fetches.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}
