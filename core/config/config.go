package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"fleet-sync/core/database"
	"fleet-sync/core/logger"
	"fleet-sync/core/mosyle"
	"fleet-sync/core/server"
	"fleet-sync/core/snipeit"
	"fleet-sync/core/storage"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Source holds configuration for the Mosyle device directory.
	Source mosyle.Config `mapstructure:"source"`
	// Target holds configuration for the Snipe-IT asset system.
	Target snipeit.Config `mapstructure:"target"`
	// Sync holds the reconciliation policy.
	Sync SyncConfig `mapstructure:"sync"`
	// Database holds configuration for the run history database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the run report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Server holds configuration for the HTTP status API.
	Server server.Config `mapstructure:"server"`
}

// SyncConfig holds the values the reconciliation engine consumes.
type SyncConfig struct {
	// ManufacturerID is assigned to every created model.
	ManufacturerID int `mapstructure:"manufacturer_id" default:"0"`
	// SupplierID is assigned to every asset.
	SupplierID int `mapstructure:"supplier_id" default:"0"`
	// DefaultStatusID is used for assets, check-ins and checkouts.
	DefaultStatusID int `mapstructure:"default_status_id" default:"0"`
	// CreateUsers permits creating users for unknown owners.
	CreateUsers bool `mapstructure:"create_users" default:"false"`
	// CheckoutDevices enables checkout reconciliation.
	CheckoutDevices bool `mapstructure:"checkout_devices" default:"true"`
	// RateLimit is the pause after each asset reconcile. Unitless numbers are seconds.
	RateLimit time.Duration `mapstructure:"rate_limit" default:"1s"`
	// Workers bounds per-device concurrency within a class.
	Workers int `mapstructure:"workers" default:"1"`
	// ValidateReferences checks configured ids against the target before a run.
	ValidateReferences bool `mapstructure:"validate_references" default:"false"`

	IOS  ClassConfig `mapstructure:"ios"`
	Mac  ClassConfig `mapstructure:"mac"`
	TVOS ClassConfig `mapstructure:"tvos"`
}

// ClassConfig toggles one device class.
type ClassConfig struct {
	Enabled    bool `mapstructure:"enabled" default:"false"`
	CategoryID int  `mapstructure:"category_id" default:"0"`
}

// LoadConfig loads configuration from an optional config.yaml, a .env file and
// environment variables, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. SYNC_IOS_ENABLED -> sync.ios.enabled)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&config, hook); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports every setting a sync run cannot do without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Target.BaseURL) == "" {
		errs = append(errs, errors.New("target.base_url is required"))
	}
	if c.Target.APIToken == "" {
		errs = append(errs, errors.New("target.api_token is required"))
	}
	if c.Source.AccessToken == "" {
		errs = append(errs, errors.New("source.access_token is required"))
	}
	if c.Source.Email == "" {
		errs = append(errs, errors.New("source.email is required"))
	}

	for key, id := range map[string]int{
		"sync.manufacturer_id":   c.Sync.ManufacturerID,
		"sync.supplier_id":       c.Sync.SupplierID,
		"sync.default_status_id": c.Sync.DefaultStatusID,
	} {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive id", key))
		}
	}

	enabled := 0
	for name, class := range c.Sync.Classes() {
		if !class.Enabled {
			continue
		}
		enabled++
		if class.CategoryID <= 0 {
			errs = append(errs, fmt.Errorf("sync.%s.category_id must be a positive id", name))
		}
	}
	if enabled == 0 {
		errs = append(errs, errors.New("no device class enabled"))
	}

	if c.Sync.RateLimit < 0 {
		errs = append(errs, errors.New("sync.rate_limit must not be negative"))
	}
	if c.Sync.Workers < 0 {
		errs = append(errs, errors.New("sync.workers must not be negative"))
	}
	if c.Target.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("target.requests_per_second must not be negative"))
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

// Classes returns the per-class settings keyed by class name.
func (s SyncConfig) Classes() map[string]ClassConfig {
	return map[string]ClassConfig{
		"ios":  s.IOS,
		"mac":  s.Mac,
		"tvos": s.TVOS,
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook reads unitless numbers bound for a time.Duration as
// seconds, so "rate_limit: 2" and SYNC_RATE_LIMIT=0.5 mean 2s and 500ms rather
// than nanoseconds. Strings with a unit are left to StringToTimeDurationHookFunc.
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}

	var seconds float64
	switch v := data.(type) {
	case int:
		seconds = float64(v)
	case int64:
		seconds = float64(v)
	case uint64:
		seconds = float64(v)
	case float64:
		seconds = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return data, nil
		}
		seconds = f
	default:
		return data, nil
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
