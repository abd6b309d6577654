package catalog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"nawabs/internal/prompt"
)

// ErrAmbiguous is returned when several candidates tie and interaction is
// disallowed.
var ErrAmbiguous = errors.New("ambiguous package selection")

// Candidates holds the three ranking tiers: exact name match, substring name
// match, tag match.
type Candidates struct {
	Exact     []Package
	Substring []Package
	Tag       []Package
}

// Empty reports whether no tier holds a candidate.
func (c Candidates) Empty() bool {
	return len(c.Exact) == 0 && len(c.Substring) == 0 && len(c.Tag) == 0
}

// DetermineCandidates ranks catalog packages against the query terms. For
// each package, the first term that matches decides its tier; later terms
// never upgrade a package to a higher tier.
func DetermineCandidates(pkgs []Package, terms []string) Candidates {
	lowered := make([]string, len(terms))
	for i, term := range terms {
		lowered[i] = strings.ToLower(term)
	}

	var c Candidates
	for _, pkg := range pkgs {
		name := strings.ToLower(pkg.Name)

	termLoop:
		for _, term := range lowered {
			switch {
			case term == name:
				c.Exact = append(c.Exact, pkg)
				break termLoop
			case strings.Contains(name, term):
				c.Substring = append(c.Substring, pkg)
				break termLoop
			default:
				for _, tag := range pkg.Tags {
					if strings.Contains(strings.ToLower(tag), term) {
						c.Tag = append(c.Tag, pkg)
						break termLoop
					}
				}
			}
		}
	}
	return c
}

// SelectOptions configures disambiguation behavior.
type SelectOptions struct {
	Interactive bool
	Asker       prompt.Asker
	Out         io.Writer
}

// Select walks the tiers in priority order and picks the winner of the first
// non-empty one. A single entry wins outright; several entries either prompt
// for a choice or fail with ErrAmbiguous when interaction is disallowed.
func Select(c Candidates, opts SelectOptions) (Package, error) {
	for _, tier := range [][]Package{c.Exact, c.Substring, c.Tag} {
		switch len(tier) {
		case 0:
			continue
		case 1:
			return tier[0], nil
		}

		if opts.Out != nil {
			for _, pkg := range tier {
				fmt.Fprintf(opts.Out, "  %s  %s\n", pkg.Name, pkg.URL)
			}
		}
		if !opts.Interactive || opts.Asker == nil {
			names := make([]string, len(tier))
			for i, pkg := range tier {
				names[i] = pkg.Name
			}
			return Package{}, fmt.Errorf("%w: %s", ErrAmbiguous, strings.Join(names, ", "))
		}

		options := make([]string, len(tier))
		for i, pkg := range tier {
			options[i] = fmt.Sprintf("%s (%s)", pkg.Name, pkg.URL)
		}
		idx, err := opts.Asker.Choose("Multiple packages match", options)
		if err != nil {
			return Package{}, err
		}
		return tier[idx], nil
	}

	return Package{}, ErrUnresolved
}
