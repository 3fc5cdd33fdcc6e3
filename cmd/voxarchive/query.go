package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/voxarchive/internal/config"
	"github.com/MikeSquared-Agency/voxarchive/internal/retrieval"
)

func newQueryCmd() *cobra.Command {
	var (
		req   retrieval.Request
		scene string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one retrieval against the database and print it as JSON",
		Long: `Run a retrieval with the same facets the HTTP API accepts.

Examples:
  voxarchive query --search "dragonborn" --limit 5
  voxarchive query --subtype Scenes --character Serana
  voxarchive query --scene sceneDLC1VQ02Castle`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			engine := retrieval.New(cat, db, slog.Default())

			var out any
			if scene != "" {
				recs, err := engine.Scene(ctx, scene)
				if err != nil {
					return err
				}
				out = map[string]any{"data": recs}
			} else {
				page, err := engine.Retrieve(ctx, req)
				if err != nil {
					return err
				}
				out = page
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&req.Page, "page", 1, "page number, starting at 1")
	f.IntVar(&req.Limit, "limit", 0, "page size (0 uses the mode default)")
	f.StringVar(&req.Search, "search", "", "text to find in the topic or response")
	f.StringVar(&req.Subtype, "subtype", "", "comma separated subtype selections (Scenes switches to scene mode)")
	f.StringVar(&req.City, "city", "", "city mentioned in the line")
	f.StringVar(&req.Emotion, "emotion", "", "emotion prefix, e.g. Anger")
	f.StringVar(&req.QuestGroup, "quest-group", "", "quest line name")
	f.StringVar(&req.Context, "context", "", "narrative context name")
	f.StringVar(&req.Character, "character", "", "character name")
	f.StringVar(&scene, "scene", "", "print every line of one scene file instead")
	return cmd
}
