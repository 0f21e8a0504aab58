package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "perlsense.toml"

// DefaultExtensions are the file extensions indexed when the manifest
// names none.
var DefaultExtensions = []string{".pl", ".pm", ".t", ".psgi"}

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the content of perlsense.toml.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Index     IndexConfig     `toml:"index"`
	Log       LogConfig       `toml:"log"`
}

type WorkspaceConfig struct {
	// Root is relative to the manifest directory.
	Root       string   `toml:"root"`
	Include    []string `toml:"include"`
	Exclude    []string `toml:"exclude"`
	Extensions []string `toml:"extensions"`
}

type IndexConfig struct {
	Jobs       int    `toml:"jobs"`
	MaxSymbols int    `toml:"max_symbols"`
	CacheDir   string `toml:"cache_dir"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Manifest is a loaded configuration and where it came from. Path is empty
// when no manifest was found and Config holds the defaults.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used without a manifest.
func Default() Config {
	return Config{
		Workspace: WorkspaceConfig{
			Root:       ".",
			Exclude:    []string{".git", "blib", "local", "node_modules"},
			Extensions: slices.Clone(DefaultExtensions),
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// FindManifest walks up from startDir to locate perlsense.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds the manifest above startDir and loads it. Without one, the
// defaults apply and the root is startDir itself.
func Load(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, err := filepath.Abs(orDot(startDir))
		if err != nil {
			return nil, err
		}
		return &Manifest{Root: root, Config: Default()}, nil
	}
	return LoadFile(path)
}

// LoadFile loads a manifest at an explicit path.
func LoadFile(path string) (*Manifest, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	root := filepath.Join(dir, filepath.FromSlash(cfg.Workspace.Root))
	return &Manifest{Path: path, Root: root, Config: cfg}, nil
}

func loadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("workspace", "root") && strings.TrimSpace(cfg.Workspace.Root) == "" {
		return Config{}, fmt.Errorf("%s: [workspace].root is empty", path)
	}
	if meta.IsDefined("workspace", "extensions") {
		for i, ext := range cfg.Workspace.Extensions {
			if !strings.HasPrefix(ext, ".") {
				cfg.Workspace.Extensions[i] = "." + ext
			}
		}
	}
	if meta.IsDefined("index", "jobs") && cfg.Index.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [index].jobs must not be negative", path)
	}
	if meta.IsDefined("index", "max_symbols") && cfg.Index.MaxSymbols <= 0 {
		return Config{}, fmt.Errorf("%s: [index].max_symbols must be positive", path)
	}
	if meta.IsDefined("log", "level") && !slices.Contains(logLevels, cfg.Log.Level) {
		return Config{}, fmt.Errorf("%s: [log].level must be one of %s", path, strings.Join(logLevels, ", "))
	}
	if meta.IsDefined("log", "format") && cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return Config{}, fmt.Errorf("%s: [log].format must be text or json", path)
	}
	return cfg, nil
}

func orDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
