package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DashboardConfig holds presentation settings for the dashboard pages.
// Classification thresholds are fixed in the domain; only display
// concerns and query windows live here.
type DashboardConfig struct {
	LookbackMinutes      int               `mapstructure:"lookbackMinutes"`
	StuckThresholdMin    int               `mapstructure:"stuckThresholdMinutes"`
	CacheTTLSeconds      int               `mapstructure:"cacheTtlSeconds"`
	TopRuntimes          int               `mapstructure:"topRuntimes"`
	EfficiencyColors     map[string]string `mapstructure:"efficiencyColors"`
	ConnectorStateColors map[string]string `mapstructure:"connectorStateColors"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		LookbackMinutes:   30,
		StuckThresholdMin: 30,
		CacheTTLSeconds:   30,
		TopRuntimes:       10,
		EfficiencyColors: map[string]string{
			"VERY_EFFICIENT": "#90EE90",
			"EFFICIENT":      "#98D8C8",
			"MODERATE":       "#FFE4B5",
			"INEFFICIENT":    "#FFB6C1",
		},
		ConnectorStateColors: map[string]string{
			"RUNNING": "#90EE90",
			"STOPPED": "#FFE4B5",
			"UNKNOWN": "#FFB6C1",
		},
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder wraps a fixed config without file watching.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder() (*DashboardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/flowsight/config") // Volume-mounted config
	v.AddConfigPath("/etc/flowsight")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("FLOWSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.lookbackMinutes", defaults.LookbackMinutes)
	v.SetDefault("dashboard.stuckThresholdMinutes", defaults.StuckThresholdMin)
	v.SetDefault("dashboard.cacheTtlSeconds", defaults.CacheTTLSeconds)
	v.SetDefault("dashboard.topRuntimes", defaults.TopRuntimes)
	v.SetDefault("dashboard.efficiencyColors", defaults.EfficiencyColors)
	v.SetDefault("dashboard.connectorStateColors", defaults.ConnectorStateColors)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Printf("[dashboard-config] reload failed: %v", err)
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Printf("[dashboard-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[dashboard-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	return h.current.Load().(DashboardConfig)
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.LookbackMinutes < 5 || cfg.LookbackMinutes > 1440 {
		return errors.New("dashboard.lookbackMinutes must be within 5..1440")
	}
	if cfg.StuckThresholdMin <= 0 {
		return errors.New("dashboard.stuckThresholdMinutes must be positive")
	}
	if cfg.TopRuntimes <= 0 {
		return errors.New("dashboard.topRuntimes must be positive")
	}
	return nil
}
