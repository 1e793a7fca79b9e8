package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// detectBuild reports whether the current directory looks like a Unity
// WebGL build and returns the directory to serve.
func detectBuild() (bool, string) {
	if _, err := os.Stat("index.html"); err == nil {
		if _, err := os.Stat("Build"); err == nil {
			return true, "."
		}
	}
	return false, "."
}

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to webglserve! Let's configure how your game is served.")
	fmt.Println()

	isBuild, defaultDir := detectBuild()
	if isBuild {
		fmt.Println("Detected a Unity WebGL build in the current directory.")
		fmt.Println()
	}

	cfg := DefaultConfig()

	sourcePrompt := promptui.Select{
		Label: "Serve the game from",
		Items: []string{
			"records   - files uploaded into a local database",
			"directory - a build folder on this machine",
			"bridge    - a folder owned by a connected agent",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source selection: %w", err)
	}
	cfg.Source = []SourceType{SourceRecords, SourceDirectory, SourceBridge}[sourceIdx]

	switch cfg.Source {
	case SourceDirectory:
		dirPrompt := promptui.Prompt{Label: "Build directory", Default: defaultDir}
		if cfg.Directory, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("build directory: %w", err)
		}
	case SourceRecords:
		dbPrompt := promptui.Prompt{Label: "Database file", Default: cfg.Database}
		if cfg.Database, err = dbPrompt.Run(); err != nil {
			return nil, fmt.Errorf("database file: %w", err)
		}
	}

	listenPrompt := promptui.Prompt{Label: "Listen address", Default: cfg.Listen}
	if cfg.Listen, err = listenPrompt.Run(); err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}

	prefixPrompt := promptui.Prompt{
		Label:   "URL prefix",
		Default: cfg.Prefix,
		Validate: func(s string) error {
			if !strings.HasPrefix(s, "/") || !strings.HasSuffix(s, "/") {
				return fmt.Errorf("prefix must start and end with /")
			}
			return nil
		},
	}
	if cfg.Prefix, err = prefixPrompt.Run(); err != nil {
		return nil, fmt.Errorf("url prefix: %w", err)
	}

	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = append(append([]string(nil), DefaultExcludes...), splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
