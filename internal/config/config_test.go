package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nawabs.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NimExe != "nim" {
		t.Fatalf("expected default nim exe, got %q", cfg.NimExe)
	}
	if cfg.DepsPolicy != PolicyNormal {
		t.Fatalf("expected normal policy, got %q", cfg.DepsPolicy)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nawabs.yaml")
	contents := "deps_dir: deps_\nclone_using_https: true\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DepsDir != "deps_" {
		t.Fatalf("expected deps dir, got %q", cfg.DepsDir)
	}
	if !cfg.CloneUsingHTTPS {
		t.Fatal("expected clone_using_https to be set")
	}
	if cfg.NimExe != "nim" {
		t.Fatalf("expected default nim exe, got %q", cfg.NimExe)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    DepsPolicy
		wantErr bool
	}{
		{in: "", want: PolicyNormal},
		{in: "normal", want: PolicyNormal},
		{in: "none", want: PolicyNoDeps},
		{in: "only", want: PolicyOnlyDeps},
		{in: "ask", want: PolicyAskDeps},
		{in: "bogus", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParsePolicy(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAddForeignDepDedupes(t *testing.T) {
	cfg := Default()
	cfg.AddForeignDep("openssl")
	cfg.AddForeignDep("sdl2")
	cfg.AddForeignDep("openssl")
	if len(cfg.ForeignDeps) != 2 {
		t.Fatalf("expected 2 foreign deps, got %v", cfg.ForeignDeps)
	}
	if cfg.ForeignDeps[0] != "openssl" || cfg.ForeignDeps[1] != "sdl2" {
		t.Fatalf("unexpected order: %v", cfg.ForeignDeps)
	}
}
