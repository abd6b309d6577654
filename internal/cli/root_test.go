package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nawabs/internal/paths"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitCreatesScaffolding(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")

	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Initialized workspace") {
		t.Fatalf("unexpected output: %q", out)
	}

	pp := paths.New(dir)
	for _, path := range []string{pp.PackagesDir, pp.RecipesDir, pp.ConfigScript, pp.ConfigFile} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
}

func TestInitIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	if _, err := execute(t, "init", dir); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out, "already initialized") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSearchOutsideWorkspaceFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "search", "foo")
	if err == nil {
		t.Fatal("expected workspace discovery to fail")
	}
}

func TestSearchPrintsMatches(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	if _, err := execute(t, "init", dir); err != nil {
		t.Fatal(err)
	}

	pp := paths.New(dir)
	shard := `[{"name":"fooBar","url":"git://h/fooBar","method":"git","license":"MIT","description":"demo","tags":["util"]}]`
	if err := os.WriteFile(filepath.Join(pp.PackagesDir, "official.json"), []byte(shard), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "search", "foo", "--workspace", dir)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "fooBar") || !strings.Contains(out, "git://h/fooBar") {
		t.Fatalf("expected match in output, got %q", out)
	}
}

func TestListJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	if _, err := execute(t, "init", dir); err != nil {
		t.Fatal(err)
	}

	pp := paths.New(dir)
	shard := `[{"name":"abc","url":"git://h/abc","method":"git","license":"MIT","description":"demo","tags":[]}]`
	if err := os.WriteFile(filepath.Join(pp.PackagesDir, "official.json"), []byte(shard), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "list", "--workspace", dir, "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"name": "abc"`) {
		t.Fatalf("expected json output, got %q", out)
	}
}

func TestPinnedWithoutRecipeFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	if _, err := execute(t, "init", dir); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "pinned", "ghost", "--workspace", dir)
	if err == nil || !strings.Contains(err.Error(), "no recipe found") {
		t.Fatalf("expected no-recipe failure, got %v", err)
	}
}
