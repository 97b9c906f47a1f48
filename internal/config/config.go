// Package config loads and persists user configuration from
// ~/.config/echoverse/config, a key=value file with # comments.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config keys.
const (
	KeyOutputDir = "output-dir"
)

// Environment variable fallbacks.
const (
	EnvOutputDir = "ECHOVERSE_OUTPUT_DIR"
)

// Config holds persisted user configuration.
type Config struct {
	OutputDir string
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/echoverse.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "echoverse"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "echoverse"), nil
}

func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variable fallbacks.
// Precedence: config file values, then environment variables.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	if data, err := parseFile(p); err == nil {
		cfg.OutputDir = data[KeyOutputDir]
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv(EnvOutputDir)
	}

	return cfg, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return data, nil
}

// Save writes a single key=value to the config file, creating the directory
// and file as needed. Existing pairs are preserved, comments are not.
func Save(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for k, v := range existing {
		if _, err := fmt.Fprintf(f, "%s=%s\n", k, v); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}
	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return data[key], nil
}

// List returns all key=value pairs from the config file.
// Returns an empty map if the file doesn't exist.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}
	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return data, nil
}

// EnsureOutputDir creates the directory if it doesn't exist and verifies
// it is writable.
func EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil { // #nosec G301 -- user-chosen output dir
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".echoverse-write-test")
	f, err := os.Create(probe) // #nosec G304 -- probe inside user-chosen dir
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return nil
}

// ResolveOutputPath resolves the final output path:
//  1. An absolute output is used as-is.
//  2. A relative output is joined with outputDir when set.
//  3. An empty output means defaultName in outputDir (or cwd).
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}
	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}
	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
