package appconfig

import (
	"fmt"
	"sort"
	"strconv"

	"moviehub/pkg/models"
)

// Well-known config keys.
const (
	KeyAppVersion        = "app_version"
	KeyForceUpdate       = "force_update"
	KeyMaintenanceMode   = "maintenance_mode"
	KeySyncIntervalHours = "sync_interval_hours"
	KeyMaxScrapers       = "max_concurrent_scrapers"
	KeyFailureThreshold  = "failure_threshold"
	KeyOnlineWindowMin   = "online_window_minutes"
	KeySearchTimeoutSec  = "search_timeout_seconds"
	KeyMaxResultsPerSite = "max_results_per_source"
)

// Definition is the schema for one config key. Values are stored as
// strings but validated against Type before any write is applied.
type Definition struct {
	Type        string
	Default     string
	Description string
	Validate    func(string) error
}

var schema = map[string]Definition{
	KeyAppVersion: {
		Type:        models.ConfigTypeString,
		Default:     "1.1.0",
		Description: "Current app version",
		Validate:    notEmpty,
	},
	KeyForceUpdate: {
		Type:        models.ConfigTypeBool,
		Default:     "false",
		Description: "Force users to update",
		Validate:    isBool,
	},
	KeyMaintenanceMode: {
		Type:        models.ConfigTypeBool,
		Default:     "false",
		Description: "Enable maintenance mode",
		Validate:    isBool,
	},
	KeySyncIntervalHours: {
		Type:        models.ConfigTypeInt,
		Default:     "6",
		Description: "Auto-sync interval",
		Validate:    positiveInt,
	},
	KeyMaxScrapers: {
		Type:        models.ConfigTypeInt,
		Default:     "3",
		Description: "Max parallel scrapers",
		Validate:    positiveInt,
	},
	KeyFailureThreshold: {
		Type:        models.ConfigTypeInt,
		Default:     "5",
		Description: "Consecutive failures before a source is auto-disabled",
		Validate:    positiveInt,
	},
	KeyOnlineWindowMin: {
		Type:        models.ConfigTypeInt,
		Default:     "60",
		Description: "Minutes since last success for a source to count as online",
		Validate:    positiveInt,
	},
	KeySearchTimeoutSec: {
		Type:        models.ConfigTypeInt,
		Default:     "30",
		Description: "Per-source search timeout",
		Validate:    positiveInt,
	},
	KeyMaxResultsPerSite: {
		Type:        models.ConfigTypeInt,
		Default:     "20",
		Description: "Max results fetched per source",
		Validate:    positiveInt,
	},
}

// Keys returns all schema keys sorted.
func Keys() []string {
	out := make([]string, 0, len(schema))
	for k := range schema {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func notEmpty(v string) error {
	if v == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func isBool(v string) error {
	if v != "true" && v != "false" {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
