package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/app/progress"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show points, level, badges and island progress",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	ov := engagement.BuildOverview(d.Catalog, d.Engine.Progress())
	if err := renderStatus(out, ov); err != nil {
		return err
	}
	if d.DB != nil {
		if ts, err := d.DB.UpdatedAt(progress.Key); err == nil && !ts.IsZero() {
			fmt.Fprintf(out, "\nLast saved %s\n", ts.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func renderStatus(out io.Writer, ov engagement.Overview) error {
	fmt.Fprintf(out, "Level %d  %s  %d/%d XP\n",
		ov.Level.Level, renderBar(ov.Level.XPPercent), ov.Level.XPInLevel, ov.Level.XPInLevel+ov.Level.XPToNext)
	fmt.Fprintf(out, "Points: %d   Streak: %d   Wellness: %d   Badges: %d\n\n",
		ov.TotalPoints, ov.Streak, ov.WellnessScore, ov.BadgeCount)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ISLAND\tMODULES\tPROGRESS")
	for _, is := range ov.Islands {
		fmt.Fprintf(w, "%s\t%d/%d\t%s\n",
			is.Island.Name, is.Summary.CompletedCount, is.Island.ModuleCount, renderBar(float64(is.Summary.Percent)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(ov.Badges) > 0 {
		fmt.Fprintln(out, "\nBadges:")
		for _, b := range ov.Badges {
			fmt.Fprintf(out, "  %s %s (%s)\n", b.Icon, b.Name, b.EarnedAt.Format("2006-01-02"))
		}
	}
	return nil
}
