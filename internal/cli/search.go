package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nawabs/internal/catalog"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [terms...]",
		Short: "Echo catalog entries matching the terms",
		RunE:  runSearch,
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Echo every catalog entry",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Name())
	if err != nil {
		return err
	}
	defer a.Close()

	pkgs, err := a.loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	matches := pkgs
	if len(args) > 0 {
		c := catalog.DetermineCandidates(pkgs, args)
		matches = make([]catalog.Package, 0, len(c.Exact)+len(c.Substring)+len(c.Tag))
		matches = append(matches, c.Exact...)
		matches = append(matches, c.Substring...)
		matches = append(matches, c.Tag...)
	}

	if flagJSON {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("encode search json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(matches) == 0 {
		cmd.Printf("No packages match %v\n", args)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL\tLICENSE\tTAGS\tDESCRIPTION")
	for _, pkg := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			pkg.Name, pkg.URL, pkg.License, strings.Join(pkg.Tags, ","), pkg.Description)
	}
	return w.Flush()
}
