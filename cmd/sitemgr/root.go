package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitemgr/internal/config"
	"sitemgr/internal/format"
)

type outputOptions struct {
	json bool
	yaml bool
}

// structured reports whether a machine-readable format was requested.
func (o *outputOptions) structured() bool {
	return o != nil && (o.json || o.yaml)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		out      outputOptions
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "sitemgr",
		Short:         "Sitemgr stores uploaded files and bookmarks with attachments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if out.json && out.yaml {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			outputFormatter = format.JSONFormatter{}
			if out.yaml {
				outputFormatter = format.YAMLFormatter{}
			}

			configLevel := ""
			if cfg != nil {
				configLevel = cfg.LogLevel
			}
			warning, err := configureLoggerForCLI(logLevel, configLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&out.json, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&out.yaml, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newInfoCmd(cfg, &out),
		newFilesCmd(cfg, &out),
		newBookmarksCmd(cfg, &out),
		newAttachCmd(cfg, &out),
		newDetachCmd(cfg, &out),
		newConfigCmd(cfg, &out),
		newTokenCmd(),
	)

	return cmd
}
