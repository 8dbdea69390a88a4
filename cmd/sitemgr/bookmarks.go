package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sitemgr/internal/api"
	"sitemgr/internal/config"
)

func newBookmarksCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bm"},
		Short:   "Manage bookmarks",
	}

	cmd.AddCommand(
		newBookmarksListCmd(cfg, out),
		newBookmarksAddCmd(cfg, out),
		newBookmarksUpdateCmd(cfg, out),
		newBookmarksRemoveCmd(cfg, out),
		newBookmarksImportCmd(cfg, out),
	)
	return cmd
}

func newBookmarksListCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List bookmarks",
		Args:  requireExactlyArgs(0, "ls takes no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.ListBookmarks(cmd.Context())
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writeBookmarkList(resp.Bookmarks)
			})
		},
	}
}

func newBookmarksAddCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "add <title> <url>",
		Short: "Create a bookmark",
		Args:  requireExactlyArgs(2, "title and url are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.BookmarkCreateRequest{Title: args[0], URL: args[1], Tags: splitTagFlags(tags)}
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.CreateBookmark(cmd.Context(), req)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writeBookmarkDetail(resp.Bookmark)
			})
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable or comma separated)")
	return cmd
}

func newBookmarksUpdateCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	var (
		title string
		url   string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a bookmark's title, url or tags",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.BookmarkUpdateRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("url") {
				req.URL = &url
			}
			if cmd.Flags().Changed("tag") {
				flat := splitTagFlags(tags)
				req.Tags = &flat
			}
			if req.Title == nil && req.URL == nil && req.Tags == nil {
				return errors.New("nothing to update: pass --title, --url or --tag")
			}

			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp, err := client.UpdateBookmark(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				return writeBookmarkDetail(resp.Bookmark)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&url, "url", "", "new url")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace tags (pass --tag= to clear)")
	return cmd
}

func newBookmarksRemoveCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a bookmark (attached files are kept)",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				if err := client.DeleteBookmark(cmd.Context(), args[0]); err != nil {
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

func newBookmarksImportCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create bookmarks from a YAML file",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readBookmarkImportFile(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				if out.structured() {
					return writeJSON(records)
				}
				return writePlain("%d bookmarks would be imported\n", len(records))
			}

			return withClient(cmd.Context(), cfg, func(client *api.Client) error {
				resp := api.BookmarksResponse{}
				for i, rec := range records {
					created, err := client.CreateBookmark(cmd.Context(), rec)
					if err != nil {
						return fmt.Errorf("bookmark %d (%s): %w", i+1, rec.Title, err)
					}
					resp.Bookmarks = append(resp.Bookmarks, created.Bookmark)
				}
				if out.structured() {
					return writeJSON(resp)
				}
				if err := writeBookmarkList(resp.Bookmarks); err != nil {
					return err
				}
				return writePlain("imported %d bookmarks\n", len(resp.Bookmarks))
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without creating")
	return cmd
}
