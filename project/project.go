// Package project locates and describes a vimscript project: the
// directory tree rooted at a vimls.toml manifest, plus the settings
// that manifest carries for the lint and fmt commands.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file that marks the root of a vimscript project.
const ManifestName = "vimls.toml"

// Project represents a tree of vimscript files rooted at a manifest.
type Project struct {
	Name     string
	RootDir  string
	Manifest string
	Config   Config
}

// Config mirrors the manifest file. Fields absent from the manifest
// keep their defaults.
type Config struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Lint   LintConfig   `toml:"lint"`
	Format FormatConfig `toml:"format"`
}

// LintConfig holds the [lint] section of the manifest.
type LintConfig struct {
	// Ignore lists glob patterns for files the lint command skips.
	// Patterns without a slash match any single path segment, like
	// .gitignore; patterns with a slash match the whole path relative
	// to the project root.
	Ignore []string `toml:"ignore"`
	// Jobs caps the number of files linted in parallel. Zero means
	// one per CPU.
	Jobs int `toml:"jobs"`
}

// FormatConfig holds the [format] section of the manifest.
type FormatConfig struct {
	// Indent is the number of spaces per block level.
	Indent int `toml:"indent"`
}

// Load locates the project containing the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom locates the project containing startDir by walking up the
// directory tree until it finds a vimls.toml manifest.
func LoadFrom(startDir string) (*Project, error) {
	manifest, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no %s found in %s or any parent directory", ManifestName, startDir)
	}

	cfg, err := loadConfig(manifest)
	if err != nil {
		return nil, err
	}

	rootDir := filepath.Dir(manifest)
	name := strings.TrimSpace(cfg.Project.Name)
	if name == "" {
		name = filepath.Base(rootDir)
	}

	return &Project{
		Name:     name,
		RootDir:  rootDir,
		Manifest: manifest,
		Config:   cfg,
	}, nil
}

// FindManifest walks up from startDir looking for a vimls.toml file.
// It reports the manifest path and whether one was found.
func FindManifest(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func loadConfig(manifest string) (Config, error) {
	cfg := Config{}
	cfg.Format.Indent = 2

	meta, err := toml.DecodeFile(manifest, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", manifest, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", manifest, undecoded[0])
	}
	if cfg.Format.Indent < 1 {
		return Config{}, fmt.Errorf("%s: format.indent must be at least 1", manifest)
	}
	return cfg, nil
}

// Files returns every .vim file under the project root, sorted by
// path. Files inside dot directories and files matched by a lint
// ignore pattern are skipped.
func (p *Project) Files() ([]string, error) {
	var files []string

	err := filepath.WalkDir(p.RootDir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if file != p.RootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(file, ".vim") {
			return nil
		}
		rel, err := filepath.Rel(p.RootDir, file)
		if err != nil {
			return err
		}
		if p.ignored(filepath.ToSlash(rel)) {
			return nil
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan vim files in %s: %w", p.RootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// ignored reports whether rel, a slash-separated path relative to the
// project root, matches any lint ignore pattern.
func (p *Project) ignored(rel string) bool {
	for _, pattern := range p.Config.Lint.Ignore {
		if matchIgnore(pattern, rel) {
			return true
		}
	}
	return false
}

func matchIgnore(pattern, rel string) bool {
	if strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, rel)
		return err == nil && ok
	}
	for _, segment := range strings.Split(rel, "/") {
		if ok, err := path.Match(pattern, segment); err == nil && ok {
			return true
		}
	}
	return false
}
