// Package cli implements the ecoctl command tree.
package cli

import (
	"io"
	"os"
	"strings"

	"ecoledger/internal/logging"
	"ecoledger/internal/util/jsonutil"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8081"

type rootOptions struct {
	server   string
	logLevel string
}

// NewRootCmd creates the ecoctl root command with the seed, categories, scan,
// summary and nearest subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ecoctl",
		Short:         "Operate an ecoledger deployment",
		Long:          "ecoctl seeds the record store and talks to a running gateway over connect.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := strings.TrimSpace(os.Getenv("ECOLEDGER_SERVER"))
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "gateway base URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newSeedCmd(opts),
		newCategoriesCmd(),
		newScanCmd(opts),
		newSummaryCmd(opts),
		newNearestCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger(w io.Writer) zerolog.Logger {
	return logging.New(logging.Options{Level: o.logLevel, Pretty: true, Out: w})
}

func printJSON(w io.Writer, v any) error {
	raw, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(raw, '\n'))
	return err
}
