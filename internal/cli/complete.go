package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/domain"
)

func init() {
	rootCmd.AddCommand(completeCmd)
}

var completeCmd = &cobra.Command{
	Use:   "complete MODULE",
	Short: "Mark a module completed without answering its questionnaire",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	m, ok := d.Catalog.Module(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrModuleNotFound, args[0])
	}
	before := d.Engine.Progress()
	if !before.IsModuleCompleted(m.ID) && !engagement.ModuleUnlocked(d.Catalog, before, m.ID) {
		return fmt.Errorf("module %s is locked: complete the previous module of %s first", m.ID, m.IslandID)
	}

	after := d.Engine.CompleteModule(m.ID, m.IslandID)
	printGain(cmd.OutOrStdout(), before, after)
	return nil
}
