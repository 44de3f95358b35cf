package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables a host can use to hand configuration to a process
// without writing a file first.
const (
	EnvConfigJSON    = "HOTEL_CONFIG_JSON"
	EnvConfigYAMLB64 = "HOTEL_CONFIG_YAML_B64"
)

// FromEnv decodes configuration from HOTEL_CONFIG_JSON or, failing that, the
// base64 encoded YAML in HOTEL_CONFIG_YAML_B64. Values override the defaults.
// The boolean result is false when neither variable is set.
func FromEnv() (*Config, bool, error) {
	jsonPayload := os.Getenv(EnvConfigJSON)
	yamlPayload := os.Getenv(EnvConfigYAMLB64)

	if jsonPayload == "" && yamlPayload == "" {
		return nil, false, nil
	}

	cfg := Default()
	if jsonPayload != "" {
		if err := json.Unmarshal([]byte(jsonPayload), cfg); err != nil {
			return nil, false, fmt.Errorf("decode env config json: %w", err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return nil, false, fmt.Errorf("decode env config yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, false, fmt.Errorf("parse env config yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("validate env config: %w", err)
	}
	return cfg, true, nil
}

// Resolve prefers configuration from the environment and falls back to the
// file at path (or the defaults when path is empty).
func Resolve(path string) (*Config, error) {
	cfg, ok, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if ok {
		return cfg, nil
	}
	return Load(path)
}
