package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nawabs/internal/paths"
)

func writeShard(t *testing.T, pp paths.WorkspacePaths, name, contents string) {
	t.Helper()
	if err := os.MkdirAll(pp.PackagesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pp.PackagesDir, name), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMergesAndDedupes(t *testing.T) {
	pp := paths.New(t.TempDir())
	writeShard(t, pp, "a.json", `[
		{"name":"foo","url":"git://h/foo","method":"git","license":"MIT","description":"first","tags":["util"]}
	]`)
	writeShard(t, pp, "b.json", `[
		{"name":"Foo","url":"git://h/other","method":"git","license":"MIT","description":"dup","tags":[]},
		{"name":"bar","url":"hg://h/bar","method":"hg","license":"BSD","description":"d","tags":["net"],"version":"1.2"}
	]`)

	loader := &Loader{Paths: pp}
	pkgs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(pkgs))
	}
	if pkgs[0].Description != "first" {
		t.Fatalf("expected first occurrence to win, got %q", pkgs[0].Description)
	}
	if pkgs[1].Version != "1.2" {
		t.Fatalf("expected optional version, got %q", pkgs[1].Version)
	}
}

func TestLoadMissingRequiredField(t *testing.T) {
	pp := paths.New(t.TempDir())
	writeShard(t, pp, "bad.json", `[{"name":"foo","method":"git","license":"MIT","description":"d","tags":[]}]`)

	loader := &Loader{Paths: pp}
	_, err := loader.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing url")
	}
	if !strings.Contains(err.Error(), `"url"`) || !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("error should name field and file: %v", err)
	}
}

func TestLoadWrongFieldType(t *testing.T) {
	pp := paths.New(t.TempDir())
	writeShard(t, pp, "bad.json", `[{"name":1,"url":"u","method":"git","license":"MIT","description":"d","tags":[]}]`)

	loader := &Loader{Paths: pp}
	_, err := loader.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), `"name"`) {
		t.Fatalf("expected wrong-type error naming the field, got %v", err)
	}
}

func TestLoadNormalizesMissingTags(t *testing.T) {
	pp := paths.New(t.TempDir())
	writeShard(t, pp, "a.json", `[{"name":"foo","url":"u","method":"git","license":"MIT","description":"d"}]`)

	loader := &Loader{Paths: pp}
	pkgs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pkgs[0].Tags == nil || len(pkgs[0].Tags) != 0 {
		t.Fatalf("expected empty tags slice, got %#v", pkgs[0].Tags)
	}
}

type fakeRefresher struct {
	pp     paths.WorkspacePaths
	called int
	shard  string
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.called++
	if f.shard != "" {
		if err := os.MkdirAll(f.pp.PackagesDir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(f.pp.PackagesDir, "official.json"), []byte(f.shard), 0o644)
	}
	return nil
}

func TestLoadEmptyTriggersRefreshOnce(t *testing.T) {
	pp := paths.New(t.TempDir())
	refresher := &fakeRefresher{
		pp:    pp,
		shard: `[{"name":"foo","url":"git://h/foo","method":"git","license":"MIT","description":"d","tags":[]}]`,
	}

	loader := &Loader{Paths: pp, Refresher: refresher}
	pkgs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if refresher.called != 1 {
		t.Fatalf("expected one refresh, got %d", refresher.called)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "foo" {
		t.Fatalf("expected refreshed catalog, got %#v", pkgs)
	}
}

func TestLoadEmptyRefreshesAtMostOnce(t *testing.T) {
	pp := paths.New(t.TempDir())
	refresher := &fakeRefresher{pp: pp}

	loader := &Loader{Paths: pp, Refresher: refresher}
	for i := 0; i < 3; i++ {
		pkgs, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
		if len(pkgs) != 0 {
			t.Fatalf("expected empty catalog, got %d", len(pkgs))
		}
	}
	if refresher.called != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", refresher.called)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	pkgs := []Package{{Name: "FooBar"}}
	if _, ok := Lookup(pkgs, "foobar"); !ok {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if _, ok := Lookup(pkgs, "baz"); ok {
		t.Fatal("expected miss for unknown name")
	}
}

func TestRefreshErrorPropagates(t *testing.T) {
	pp := paths.New(t.TempDir())
	loader := &Loader{Paths: pp, Refresher: errRefresher{}}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected refresh error to propagate")
	}
}

type errRefresher struct{}

func (errRefresher) Refresh(context.Context) error { return errors.New("script failed") }
