package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nawabs/internal/logx"
	"nawabs/internal/paths"
)

// ErrUnresolved is returned when a package name is not in the catalog.
var ErrUnresolved = errors.New("package not found in catalog")

// Package is one immutable catalog record. Identity is the name, compared
// case-insensitively.
type Package struct {
	Name           string   `json:"name"`
	URL            string   `json:"url"`
	DownloadMethod string   `json:"method"`
	License        string   `json:"license"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	Version        string   `json:"version,omitempty"`
	DvcsTag        string   `json:"dvcs-tag,omitempty"`
	Web            string   `json:"web,omitempty"`
}

// Refresher re-populates the package manifests, normally by running the
// workspace's roots.nims script.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Loader reads the merged catalog from the workspace's manifest shards. It
// remembers whether a refresh was already attempted so an empty catalog
// triggers the refresh script at most once per process.
type Loader struct {
	Paths     paths.WorkspacePaths
	Logger    logx.Logger
	Refresher Refresher

	refreshed bool
}

func (l *Loader) logf(format string, v ...any) {
	if l != nil && l.Logger != nil {
		l.Logger.Printf(format, v...)
	}
}

// Load scans <workspace>/nawabs/packages/ for *.json shards and merges them.
// Shards are visited in lexical order and the first occurrence of a name
// wins. An empty catalog invokes the refresher once and rescans.
func (l *Loader) Load(ctx context.Context) ([]Package, error) {
	pkgs, found, err := l.scan()
	if err != nil {
		return nil, err
	}

	if !found && !l.refreshed && l.Refresher != nil {
		l.refreshed = true
		l.logf("no package manifests found, refreshing")
		if err := l.Refresher.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("refresh catalog: %w", err)
		}
		pkgs, _, err = l.scan()
		if err != nil {
			return nil, err
		}
	}

	return pkgs, nil
}

func (l *Loader) scan() ([]Package, bool, error) {
	entries, err := os.ReadDir(l.Paths.PackagesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read packages dir: %w", err)
	}

	var pkgs []Package
	seen := map[string]struct{}{}
	found := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		found = true

		shardPath := filepath.Join(l.Paths.PackagesDir, entry.Name())
		data, err := os.ReadFile(shardPath)
		if err != nil {
			return nil, false, fmt.Errorf("read manifest %s: %w", shardPath, err)
		}

		decoded, err := decodeShard(entry.Name(), data)
		if err != nil {
			return nil, false, err
		}

		for _, pkg := range decoded {
			key := strings.ToLower(pkg.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pkgs = append(pkgs, pkg)
		}
	}

	return pkgs, found, nil
}

// decodeShard parses one manifest file, enforcing the record schema. Errors
// name the offending field and file.
func decodeShard(file string, data []byte) ([]Package, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", file, err)
	}

	pkgs := make([]Package, 0, len(records))
	for i, record := range records {
		var pkg Package

		required := []struct {
			key string
			dst *string
		}{
			{"name", &pkg.Name},
			{"url", &pkg.URL},
			{"method", &pkg.DownloadMethod},
			{"license", &pkg.License},
			{"description", &pkg.Description},
		}
		for _, field := range required {
			raw, ok := record[field.key]
			if !ok {
				return nil, fmt.Errorf("manifest %s: package %d: missing required field %q", file, i, field.key)
			}
			if err := json.Unmarshal(raw, field.dst); err != nil {
				return nil, fmt.Errorf("manifest %s: package %d: field %q must be a string", file, i, field.key)
			}
		}

		if raw, ok := record["tags"]; ok {
			if err := json.Unmarshal(raw, &pkg.Tags); err != nil {
				return nil, fmt.Errorf("manifest %s: package %d: field %q must be a list of strings", file, i, "tags")
			}
		}
		if pkg.Tags == nil {
			pkg.Tags = []string{}
		}

		optional := []struct {
			key string
			dst *string
		}{
			{"version", &pkg.Version},
			{"dvcs-tag", &pkg.DvcsTag},
			{"web", &pkg.Web},
		}
		for _, field := range optional {
			raw, ok := record[field.key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, field.dst); err != nil {
				return nil, fmt.Errorf("manifest %s: package %d: field %q must be a string", file, i, field.key)
			}
		}

		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// Lookup finds a package by name, case-insensitively.
func Lookup(pkgs []Package, name string) (Package, bool) {
	for _, pkg := range pkgs {
		if strings.EqualFold(pkg.Name, name) {
			return pkg, true
		}
	}
	return Package{}, false
}
