// Package cli implements syncctl, the operator command line for the
// contactsync trigger and mapping API.
package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"contactsync/internal/platform/restclient"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server     string
	AdminToken string
	Format     string // "json" | "text"
	Timeout    time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the syncctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Operate the contactsync reconciliation service",
		Long: `syncctl triggers repairs, migrations and merges on a running contactsync
instance and inspects or maintains individual mappings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", envOr("SYNCCTL_SERVER", "http://localhost:8080"), "contactsync base URL")
	cmd.PersistentFlags().StringVar(&opts.AdminToken, "admin-token", os.Getenv("ADMIN_API_TOKEN"), "operator admin token")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "request timeout")

	cmd.AddCommand(NewRepairCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewMappingCommand(opts))

	return cmd
}

func (o *RootOptions) client() (*restclient.Client, error) {
	var opts []restclient.Option
	if o.AdminToken != "" {
		opts = append(opts, restclient.WithHeader("X-Admin-Token", o.AdminToken))
	}
	return restclient.New("contactsync", o.Server, o.Timeout, nil, opts...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
