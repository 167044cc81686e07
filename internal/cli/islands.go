package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/domain"
)

func init() {
	rootCmd.AddCommand(islandsCmd)
}

var islandsCmd = &cobra.Command{
	Use:     "islands [ISLAND]",
	Aliases: []string{"ls"},
	Short:   "List islands, or the modules of one island",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runIslands,
}

func runIslands(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	p := d.Engine.Progress()
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return renderIslands(out, d.Catalog.Islands(), p)
	}

	is, ok := d.Catalog.Island(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrIslandNotFound, args[0])
	}
	return renderModules(out, is, engagement.IslandModules(d.Catalog, p, is.ID))
}

func renderIslands(out io.Writer, islands []domain.Island, p domain.UserProgress) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDONE\tPROGRESS")
	for _, is := range islands {
		s := engagement.IslandSummaryFor(p, is.ID)
		fmt.Fprintf(w, "%s\t%s %s\t%d\t%d%%\n", is.ID, is.Icon, is.Name, s.CompletedCount, s.Percent)
	}
	return w.Flush()
}

func renderModules(out io.Writer, is domain.Island, views []engagement.ModuleView) error {
	fmt.Fprintf(out, "%s %s\n%s\n\n", is.Icon, is.Name, is.Description)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDURATION\tSTATE")
	for _, v := range views {
		state := "locked"
		switch {
		case v.Completed:
			state = "completed"
		case v.Unlocked:
			state = "open"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Module.ID, v.Module.Title, v.Module.Duration, state)
	}
	return w.Flush()
}
