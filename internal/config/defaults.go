package config

import "time"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".webglserve.yml"

// DefaultExcludes are glob patterns never uploaded.
var DefaultExcludes = []string{
	"**/*.map",
	"**/*.pdb",
	"**/*_BackUpThisFolder_ButDontShipItWithYourGame/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		Prefix:        "/unity-game/",
		Index:         "index.html",
		Source:        SourceRecords,
		Directory:     ".",
		Database:      "webglserve.db",
		Include:       []string{"**"},
		Exclude:       DefaultExcludes,
		Precompressed: true,
		Bridge: BridgeConfig{
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}
