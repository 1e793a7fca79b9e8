package config

import "time"

// SourceType selects where the game build is served from.
type SourceType string

const (
	// SourceRecords serves files uploaded into the SQLite record store.
	SourceRecords SourceType = "records"
	// SourceDirectory serves a live directory on disk.
	SourceDirectory SourceType = "directory"
	// SourceBridge asks a connected agent for every file.
	SourceBridge SourceType = "bridge"
)

// Config is the top-level webglserve configuration, corresponding to
// .webglserve.yml.
type Config struct {
	Listen        string       `yaml:"listen" koanf:"listen"`
	Prefix        string       `yaml:"prefix" koanf:"prefix"`
	Index         string       `yaml:"index" koanf:"index"`
	Source        SourceType   `yaml:"source" koanf:"source"`
	Directory     string       `yaml:"directory" koanf:"directory"`
	Database      string       `yaml:"database" koanf:"database"`
	Include       []string     `yaml:"include" koanf:"include"`
	Exclude       []string     `yaml:"exclude" koanf:"exclude"`
	Precompressed bool         `yaml:"precompressed" koanf:"precompressed"`
	Watch         bool         `yaml:"watch" koanf:"watch"`
	OpenBrowser   bool         `yaml:"open_browser" koanf:"open_browser"`
	Bridge        BridgeConfig `yaml:"bridge" koanf:"bridge"`
	Log           LogConfig    `yaml:"log" koanf:"log"`
	CORS          CORSConfig   `yaml:"cors" koanf:"cors"`
}

// BridgeConfig holds messaging bridge settings.
type BridgeConfig struct {
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
	Secret  string        `yaml:"secret,omitempty" koanf:"secret"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// CORSConfig lists the origins allowed to call the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}
