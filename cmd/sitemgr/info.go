package main

import (
	"github.com/spf13/cobra"

	"sitemgr/internal/api"
	"sitemgr/internal/config"
)

func newInfoCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server and store info",
		Args:  requireExactlyArgs(0, "info takes no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}

				_ = writePlain("api_url: %s\n", cfg.APIURL)
				_ = writePlain("version: %s\n", resp.Version)
				_ = writePlain("bookmarks: %d\n", resp.Bookmarks)
				_ = writePlain("files: %d\n", resp.Files)
				return nil
			})
		},
	}
}
