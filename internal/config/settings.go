package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are business defaults shared by every company.
type Settings struct {
	HomeState             string            `mapstructure:"homeState"`
	DefaultTaxRate        float64           `mapstructure:"defaultTaxRate"`
	DefaultCurrency       string            `mapstructure:"defaultCurrency"`
	NumberTemplates       map[string]string `mapstructure:"numberTemplates"`
	ReportCacheTTLSeconds int               `mapstructure:"reportCacheTTLSeconds"`
}

func DefaultSettings() Settings {
	return Settings{
		HomeState:       "Karnataka",
		DefaultTaxRate:  18,
		DefaultCurrency: "INR",
		NumberTemplates: map[string]string{
			"quotation":    "QTN-{YYYY}-{SEQ3}",
			"invoice":      "INV-{YYYY}-{SEQ3}",
			"installation": "INS-{YYYY}-{SEQ4}",
			"amc":          "AMC-{YYYY}-{SEQ3}",
			"complaint":    "COMP-{YYYY}-{SEQ4}",
			"sales_order":  "SO-{YYYY}-{SEQ4}",
			"case":         "CASE-{YYYY}-{SEQ3}",
			"solution":     "SOL-{YYYY}-{SEQ3}",
		},
		ReportCacheTTLSeconds: 60,
	}
}

// ReportCacheTTL is the lifetime of a cached report payload.
func (s Settings) ReportCacheTTL() time.Duration {
	if s.ReportCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.ReportCacheTTLSeconds) * time.Second
}

// NumberTemplate returns the numbering template for a document type.
func (s Settings) NumberTemplate(docType string) string {
	if tpl := strings.TrimSpace(s.NumberTemplates[docType]); tpl != "" {
		return tpl
	}
	return DefaultSettings().NumberTemplates[docType]
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

// NewStaticSettings returns a holder that never reloads.
func NewStaticSettings(s Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(s)
	return holder
}

func NewSettingsHolder(log *zap.Logger) (*SettingsHolder, error) {
	log = log.Named("config.settings")
	v := viper.New()

	v.SetConfigName("crm")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/crm")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("settings.homeState", defaults.HomeState)
	v.SetDefault("settings.defaultTaxRate", defaults.DefaultTaxRate)
	v.SetDefault("settings.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("settings.numberTemplates", defaults.NumberTemplates)
	v.SetDefault("settings.reportCacheTTLSeconds", defaults.ReportCacheTTLSeconds)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg Settings
	if err := v.UnmarshalKey("settings", &cfg); err != nil {
		return nil, err
	}
	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticSettings(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("settings", &updated); err != nil {
			log.Warn("settings reload failed", zap.Error(err))
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Warn("invalid settings ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	if h == nil {
		return DefaultSettings()
	}
	return h.current.Load().(Settings)
}

func validateSettings(cfg Settings) error {
	if strings.TrimSpace(cfg.HomeState) == "" {
		return errors.New("settings.homeState cannot be empty")
	}
	if cfg.DefaultTaxRate < 0 || cfg.DefaultTaxRate > 100 {
		return errors.New("settings.defaultTaxRate must be within 0..100")
	}
	return nil
}
