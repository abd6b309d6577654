package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nawabs/internal/prompt"
)

func testCatalog() []Package {
	return []Package{
		{Name: "fooBar", URL: "git://h/fooBar", Tags: []string{"util"}},
		{Name: "foobaz", URL: "git://h/foobaz", Tags: []string{"util"}},
		{Name: "quux", URL: "git://h/quux", Tags: []string{"fooling"}},
	}
}

func TestDetermineCandidatesTiers(t *testing.T) {
	c := DetermineCandidates(testCatalog(), []string{"foo"})

	if len(c.Exact) != 0 {
		t.Fatalf("expected no exact matches, got %v", c.Exact)
	}
	if len(c.Substring) != 2 {
		t.Fatalf("expected fooBar and foobaz as substring matches, got %v", c.Substring)
	}
	if len(c.Tag) != 1 || c.Tag[0].Name != "quux" {
		t.Fatalf("expected quux as tag match, got %v", c.Tag)
	}
}

func TestDetermineCandidatesSubstringBeatsTag(t *testing.T) {
	// A term matching both by substring and by tag places the package in the
	// substring tier only.
	pkgs := []Package{{Name: "foolib", Tags: []string{"foo"}}}
	c := DetermineCandidates(pkgs, []string{"foo"})
	if len(c.Substring) != 1 || len(c.Tag) != 0 {
		t.Fatalf("expected substring tier only, got %+v", c)
	}
}

func TestDetermineCandidatesFirstTermWins(t *testing.T) {
	// The first matching term decides the tier even when a later term would
	// match a higher tier.
	pkgs := []Package{{Name: "foo", Tags: []string{"web"}}}
	c := DetermineCandidates(pkgs, []string{"oo", "foo"})
	if len(c.Substring) != 1 || len(c.Exact) != 0 {
		t.Fatalf("expected first-term substring assignment, got %+v", c)
	}
}

func TestDetermineCandidatesCaseInsensitive(t *testing.T) {
	c := DetermineCandidates(testCatalog(), []string{"FOOBAR"})
	if len(c.Exact) != 1 || c.Exact[0].Name != "fooBar" {
		t.Fatalf("expected exact case-insensitive match, got %+v", c)
	}
}

func TestSelectUniqueWinner(t *testing.T) {
	c := DetermineCandidates(testCatalog(), []string{"quux"})
	pkg, err := Select(c, SelectOptions{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if pkg.Name != "quux" {
		t.Fatalf("expected quux, got %s", pkg.Name)
	}
}

func TestSelectAmbiguousNonInteractive(t *testing.T) {
	var out bytes.Buffer
	c := DetermineCandidates(testCatalog(), []string{"foo"})

	_, err := Select(c, SelectOptions{Out: &out})
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	if !strings.Contains(out.String(), "git://h/fooBar") {
		t.Fatalf("expected candidate URLs to be printed, got %q", out.String())
	}
}

func TestSelectInteractive(t *testing.T) {
	c := DetermineCandidates(testCatalog(), []string{"foo"})

	pkg, err := Select(c, SelectOptions{
		Interactive: true,
		Asker:       &prompt.Script{Inputs: []string{"2"}},
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if pkg.Name != "foobaz" {
		t.Fatalf("expected foobaz, got %s", pkg.Name)
	}
}

func TestSelectAbort(t *testing.T) {
	c := DetermineCandidates(testCatalog(), []string{"foo"})

	_, err := Select(c, SelectOptions{
		Interactive: true,
		Asker:       &prompt.Script{Inputs: []string{"abort"}},
	})
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestSelectNothing(t *testing.T) {
	if _, err := Select(Candidates{}, SelectOptions{}); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestSelectPrefersExactTier(t *testing.T) {
	pkgs := []Package{
		{Name: "json", Tags: nil},
		{Name: "jsonutils", Tags: nil},
	}
	c := DetermineCandidates(pkgs, []string{"json"})
	pkg, err := Select(c, SelectOptions{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if pkg.Name != "json" {
		t.Fatalf("expected exact tier to win, got %s", pkg.Name)
	}
}
