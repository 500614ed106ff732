// Package config loads the process's JSON configuration file and exposes
// the per-source connection/channel schema the orchestrators are wired
// from.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Env is a deployment environment. Only these three values are accepted on
// the command line.
type Env string

const (
	EnvDev     Env = "dev"
	EnvStaging Env = "staging"
	EnvProd    Env = "prod"
)

// Valid reports whether e is one of the three accepted environments.
func (e Env) Valid() bool {
	switch e {
	case EnvDev, EnvStaging, EnvProd:
		return true
	default:
		return false
	}
}

// Connection is one environment's worth of connection parameters for a
// channel. Port is optional and is zero when omitted; no adapter in this
// repository reads it.
type Connection struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Pass     string `json:"pass"`
	Database string `json:"database"`
	Port     int    `json:"port,omitempty"`
}

// TabularChannel configures one tabular (TDS) copy topic.
type TabularChannel struct {
	Name         string   `json:"name"`
	Script       []string `json:"script"`
	ModelName    string   `json:"modelName"`
	Model        string   `json:"model"`
	TargetStores []string `json:"targetStores"`
}

// DirectoryChannel configures one directory (LDAP) copy topic.
type DirectoryChannel struct {
	Name          string `json:"name"`
	Node          string `json:"node"`
	Filter        string `json:"filter"`
	IDAttribute   string `json:"idAttribute"`
	TimeAttribute string `json:"timeAttribute"`
}

// ProgramSettings holds tunables shared across channels of one source kind.
type ProgramSettings struct {
	SleepMS int `json:"sleep ms"`
}

// TabularConfig is the "tds" top-level section.
type TabularConfig struct {
	Connections map[string]map[Env]Connection `json:"connections"`
	Channels    map[string][]TabularChannel    `json:"channels"`
	Settings    struct {
		Program ProgramSettings `json:"program"`
	} `json:"settings"`
}

// DirectoryConfig is the "ldap" top-level section.
type DirectoryConfig struct {
	Connections map[string]map[Env]Connection `json:"connections"`
	Channels    map[string][]DirectoryChannel `json:"channels"`
}

// DocumentConfig is the "mongo" top-level section; it has exactly one
// connection group, named "one".
type DocumentConfig struct {
	Connections map[string]map[Env]Connection `json:"connections"`
}

// SearchConfig is the "elastic" top-level section; like DocumentConfig it
// has exactly one connection group, and additionally names an index.
type SearchConfig struct {
	Connections map[string]map[Env]struct {
		Connection
		Index string `json:"index"`
	} `json:"connections"`
}

// Config is the full configs/config.json schema.
type Config struct {
	Tabular   TabularConfig   `json:"tds"`
	Directory DirectoryConfig `json:"ldap"`
	Document  DocumentConfig  `json:"mongo"`
	Search    SearchConfig    `json:"elastic"`
}

// Load reads and parses the UTF-8 JSON configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
