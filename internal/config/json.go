package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// duration is a JSON-friendly time.Duration accepting either strings like
// "5s" or integer nanoseconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
	return nil
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero, so a partial file only overrides
// the settings it names.
type JsonConfig struct {
	LogLevel     *string   `json:"log_level"`
	SecretsDir   *string   `json:"secrets_dir"`
	UseKeyring   *bool     `json:"use_keyring"`
	LegacyKey    *string   `json:"legacy_key"`
	PollInterval *duration `json:"poll_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via jsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies fields present in the file into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := jsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.SecretsDir != nil {
		cfg.SecretsDir = *jc.SecretsDir
	}
	if jc.UseKeyring != nil {
		cfg.UseKeyring = *jc.UseKeyring
	}
	if jc.LegacyKey != nil {
		cfg.LegacyKey = *jc.LegacyKey
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
}
