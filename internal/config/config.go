// Package config is the external Configuration loader (spec §3's
// "Configuration" data type is produced by an external loader; the
// orchestrator accepts only the validated struct"). It merges a config
// file, environment variables, and CLI flags via viper, the same loader
// the teacher's CLI uses for its own settings.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/reactcheck/reactcheck/internal/errs"
	"github.com/reactcheck/reactcheck/internal/model"
)

// BindFlags registers the flags backing every recognized Configuration
// option on fs and binds them into v, mirroring the teacher's
// bindFlag(viperKey, flagName) convention: viper keys use underscores,
// flag names use hyphens.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := model.DefaultConfiguration()

	fs.Int("critical-threshold", d.CriticalThreshold, "render count at or above which a component is critical")
	fs.Int("warning-threshold", d.WarningThreshold, "render count at or above which a component is warning")
	fs.Float64("fps-threshold", d.FPSThreshold, "render-rate floor below which an fps_drop event fires")
	fs.StringSlice("include", nil, "glob patterns of component names to include")
	fs.StringSlice("exclude", nil, "glob patterns of component names to exclude")
	fs.Bool("track-unnecessary", d.TrackUnnecessary, "count renders with necessary=false")
	fs.Duration("chain-window", d.ChainWindow, "frame window duration for cascade grouping")
	fs.Int("context-trigger-min-consumers", d.ContextTriggerMinConsumers, "minimum distinct consumers for a context-triggered chain")
	fs.Float64("useful-computation-threshold-ms", d.UsefulComputationThresholdMs, "average render time suspected of an expensive computation")
	fs.Int("max-queued-events", d.MaxQueuedEvents, "bound on the inbound event queue before back-pressure coalescing")

	bind := func(viperKey, flagName string) error {
		return v.BindPFlag(viperKey, fs.Lookup(flagName))
	}
	binds := [][2]string{
		{"critical_threshold", "critical-threshold"},
		{"warning_threshold", "warning-threshold"},
		{"fps_threshold", "fps-threshold"},
		{"include", "include"},
		{"exclude", "exclude"},
		{"track_unnecessary", "track-unnecessary"},
		{"chain_window", "chain-window"},
		{"context_trigger_min_consumers", "context-trigger-min-consumers"},
		{"useful_computation_threshold_ms", "useful-computation-threshold-ms"},
		{"max_queued_events", "max-queued-events"},
	}
	for _, b := range binds {
		if err := bind(b[0], b[1]); err != nil {
			return fmt.Errorf("config: bind %s: %w", b[0], err)
		}
	}

	v.SetEnvPrefix("REACTCHECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return nil
}

// Load reads the merged flag/env/file configuration out of v and
// validates it into a model.Configuration. Unrecognized keys are never
// rejected here (viper does not enumerate a document's unknown keys by
// default); validation instead rejects the recognized fields' invalid
// *values* — negative thresholds, non-positive windows, and so on —
// which is the failure mode spec §3's "rejected at load" language
// actually gates against.
func Load(v *viper.Viper) (model.Configuration, error) {
	cfg := model.Configuration{
		CriticalThreshold:            v.GetInt("critical_threshold"),
		WarningThreshold:             v.GetInt("warning_threshold"),
		FPSThreshold:                 v.GetFloat64("fps_threshold"),
		Include:                      v.GetStringSlice("include"),
		Exclude:                      v.GetStringSlice("exclude"),
		TrackUnnecessary:             v.GetBool("track_unnecessary"),
		ChainWindow:                  v.GetDuration("chain_window"),
		ContextTriggerMinConsumers:   v.GetInt("context_trigger_min_consumers"),
		UsefulComputationThresholdMs: v.GetFloat64("useful_computation_threshold_ms"),
		MaxQueuedEvents:              v.GetInt("max_queued_events"),
	}
	if err := Validate(cfg); err != nil {
		return model.Configuration{}, err
	}
	return cfg, nil
}

// Validate rejects a Configuration whose recognized fields carry
// nonsensical values, per spec §3's "rejected at load" requirement.
func Validate(cfg model.Configuration) error {
	switch {
	case cfg.WarningThreshold < 0:
		return errs.New(errs.ConfigInvalid, "config.Validate", "warning threshold must be non-negative")
	case cfg.CriticalThreshold < cfg.WarningThreshold:
		return errs.New(errs.ConfigInvalid, "config.Validate", "critical threshold must be >= warning threshold")
	case cfg.ChainWindow <= 0:
		return errs.New(errs.ConfigInvalid, "config.Validate", "chain window must be positive")
	case cfg.ContextTriggerMinConsumers < 1:
		return errs.New(errs.ConfigInvalid, "config.Validate", "context-trigger minimum consumers must be at least 1")
	case cfg.MaxQueuedEvents < 1:
		return errs.New(errs.ConfigInvalid, "config.Validate", "max queued events must be at least 1")
	case cfg.UsefulComputationThresholdMs < 0:
		return errs.New(errs.ConfigInvalid, "config.Validate", "useful computation threshold must be non-negative")
	}
	return nil
}
