package cli

import (
	"bufio"
	"io"

	"github.com/ikigai-wellness/ikigai/internal/daemon"
)

// openDaemon loads the config, applies the global flags and wires the
// services. Callers must Close the result.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flagEphemeral {
		cfg.Storage.Ephemeral = true
	}
	if flagCatalog != "" {
		cfg.Catalog.File = flagCatalog
	}
	return daemon.NewWithConfig(cfg)
}

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}
