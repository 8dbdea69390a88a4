package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sitemgr/internal/blobstore"
	"sitemgr/internal/config"
	"sitemgr/internal/server"
	"sitemgr/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the sitemgr API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DataDir == "" || cfg.UploadsDir == "" {
				return fmt.Errorf("data and uploads directories are required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			bookmarksPath := cfg.BookmarksPath(store.DefaultFileName)
			logger.Info("opening bookmark store", "path", bookmarksPath)
			st, err := store.Open(bookmarksPath, logger)
			if err != nil {
				return err
			}

			logger.Info("opening uploads directory", "path", cfg.UploadsDir)
			bs, err := blobstore.NewLocalDir(cfg.UploadsDir)
			if err != nil {
				return err
			}

			srv := server.New(addr, st, bs, logger)
			srv.ConfigureVersion(version)
			srv.ConfigureUploadOptions(server.UploadOptions{
				MaxUploadBytes:     cfg.Uploads.MaxUploadBytes,
				MultipartMaxMemory: cfg.Uploads.MultipartMaxMemory,
			})
			srv.ConfigureAuth(cfg.Auth.TokenHash)
			return srv.ListenAndServe()
		},
	}
}
