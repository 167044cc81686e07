package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ikigai-wellness/ikigai/internal/domain"
)

func init() {
	rootCmd.AddCommand(challengeCmd)
}

var challengeCmd = &cobra.Command{
	Use:   "challenge [CHALLENGE]",
	Short: "List daily challenges, or complete one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChallenge,
}

func runChallenge(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	before := d.Engine.Progress()
	if len(args) == 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPOINTS\tDONE")
		for _, ch := range d.Catalog.Challenges() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", ch.ID, ch.Title, ch.Points, before.IsChallengeCompleted(ch.ID))
		}
		return w.Flush()
	}

	ch, ok := d.Catalog.Challenge(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrChallengeNotFound, args[0])
	}
	printGain(out, before, d.Engine.CompleteChallenge(ch.ID))
	return nil
}

// printGain summarizes what a completion changed.
func printGain(out io.Writer, before, after domain.UserProgress) {
	gained := after.TotalPoints - before.TotalPoints
	if gained == 0 {
		fmt.Fprintln(out, "Already completed. Nothing changed.")
		return
	}
	fmt.Fprintf(out, "%+d points (total %d)\n", gained, after.TotalPoints)
	for _, b := range after.Badges {
		if !before.HasBadge(b.ID) {
			fmt.Fprintf(out, "New badge: %s %s\n", b.Icon, b.Name)
		}
	}
}
