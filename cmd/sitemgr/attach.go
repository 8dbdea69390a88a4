package main

import (
	"github.com/spf13/cobra"

	"sitemgr/internal/api"
	"sitemgr/internal/config"
)

func newAttachCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <bookmark-id> <file>",
		Short: "Attach an uploaded file to a bookmark",
		Args:  requireExactlyArgs(2, "bookmark id and file name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.Attach(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writeAttachments(args[0], resp)
			})
		},
	}
}

func newDetachCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <bookmark-id> <file>",
		Short: "Remove a file from a bookmark's attachments",
		Args:  requireExactlyArgs(2, "bookmark id and file name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.Detach(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writeAttachments(args[0], resp)
			})
		},
	}
}
