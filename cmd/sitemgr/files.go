package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sitemgr/internal/api"
	"sitemgr/internal/config"
	"sitemgr/internal/models"
)

func newFilesCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage uploaded files",
	}

	cmd.AddCommand(
		newFilesListCmd(cfg, out),
		newFilesUploadCmd(cfg, out),
		newFilesGetCmd(cfg),
		newFilesRemoveCmd(cfg, out),
	)
	return cmd
}

func newFilesListCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List uploaded files",
		Args:  requireExactlyArgs(0, "ls takes no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.ListFiles(cmd.Context())
				if err != nil {
					return err
				}
				if resp.Files == nil {
					resp.Files = []models.BlobInfo{}
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writeFileList(resp.Files)
			})
		},
	}
}

func newFilesUploadCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file, replacing any file with the same name",
		Args:  requireExactlyArgs(1, "path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if name == "" {
				name = filepath.Base(args[0])
			}
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.UploadFile(cmd.Context(), name, f)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writePlain("uploaded %s (%s)\n", resp.File.Name, formatSize(resp.File.Size))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store under this name instead of the file's base name")
	return cmd
}

func newFilesGetCmd(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Download a file",
		Args:  requireExactlyArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				if output == "-" {
					return client.DownloadFile(cmd.Context(), name, os.Stdout)
				}
				dst := output
				if dst == "" {
					dst = name
				}
				return downloadToFile(cmd, client, name, dst)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this path (- for stdout; default: the file name)")
	return cmd
}

// downloadToFile writes into a temp file next to dst and renames on success.
func downloadToFile(cmd *cobra.Command, client *api.Client, name, dst string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".sitemgr-get-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := client.DownloadFile(cmd.Context(), name, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", dst)
	return nil
}

func newFilesRemoveCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a file and detach it from every bookmark",
		Args:  requireExactlyArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				if err := client.DeleteFile(cmd.Context(), args[0]); err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(api.OKResponse{OK: true})
				}
				return writePlain("deleted %s\n", args[0])
			})
		},
	}
}
