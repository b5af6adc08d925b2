package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/krazyTry/lstpool-go/quote"
	"github.com/krazyTry/lstpool-go/release"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Snapshot          string
	ReleaseFraction   string
	ReleaseHorizon    uint64
	RebalanceMaxSteps uint64
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LSTPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("release-fraction", release.DefaultReleaseFraction)
	v.SetDefault("release-horizon", uint64(release.DefaultHorizonSlots))
	v.SetDefault("rebalance-max-steps", uint64(quote.DefaultMaxSteps))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("lstquote")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Snapshot:          v.GetString("snapshot"),
		ReleaseFraction:   v.GetString("release-fraction"),
		ReleaseHorizon:    v.GetUint64("release-horizon"),
		RebalanceMaxSteps: v.GetUint64("rebalance-max-steps"),
		LogLevel:          v.GetString("log-level"),
	}
	return cfg, nil
}

// ReleaseRate derives the default release rate from the configured fraction
// and horizon.
func (c Config) ReleaseRate() (release.Rate, error) {
	fraction, err := decimal.NewFromString(c.ReleaseFraction)
	if err != nil {
		return release.Rate{}, fmt.Errorf("release fraction %q: %w", c.ReleaseFraction, err)
	}
	return release.RateForHorizon(fraction, c.ReleaseHorizon)
}
