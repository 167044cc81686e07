package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Fprint(cmd.OutOrStdout(), "Erase all points, badges and answers? [y/N] ")
		scanner := newLineScanner(cmd.InOrStdin())
		if !scanner.Scan() || (scanner.Text() != "y" && scanner.Text() != "Y") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if !d.Engine.ResetAllData() {
		return errors.New("reset failed: storage unavailable")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress erased.")
	return nil
}
