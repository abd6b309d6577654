package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nawabs/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the compiler and VCS tools are available",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	a, err := newApp("doctor")
	if err != nil {
		return err
	}
	defer a.Close()

	infos := tools.Probe(cmd.Context(), a.cfg.NimExe)

	if flagJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("encode doctor json: %w", err)
		}
		cmd.Println(string(data))
		return tools.Missing(infos, "nim", "git")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tAVAILABLE\tVERSION\tPATH\tERROR")
	for _, name := range []string{"nim", "git", "hg"} {
		info := infos[name]
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\t%s\n", info.Name, info.Available, info.Version, info.Path, info.Error)
	}
	w.Flush()

	// hg is optional; builds only need the compiler and git.
	return tools.Missing(infos, "nim", "git")
}
