package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/asaidimu/go-folio/core/editor"
	"github.com/asaidimu/go-folio/core/render"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/asaidimu/go-folio/export"
	"github.com/asaidimu/go-folio/preview"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportCollection string
	exportPath       string

	previewPage       string
	previewCollection string
	previewDocument   string
	previewAddr       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every document of a collection to a JSON file",
	Long: `Writes a JSON array of {id, ...fields} objects, with timestamps as
RFC 3339 strings. Fails when the collection does not exist or the path cannot
be written.`,
	RunE: runExport,
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collection names",
	RunE:  runCollections,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve the rendered preview of one document to a browser",
	RunE:  runPreview,
}

func init() {
	exportCmd.Flags().StringVar(&exportCollection, "collection", "", "Collection to export (required)")
	exportCmd.Flags().StringVar(&exportPath, "path", "", "Output file (required)")
	exportCmd.MarkFlagRequired("collection")
	exportCmd.MarkFlagRequired("path")

	previewCmd.Flags().StringVar(&previewPage, "page", "", "Page whose preview is served (required)")
	previewCmd.Flags().StringVar(&previewCollection, "collection", "", "Anchor collection")
	previewCmd.Flags().StringVar(&previewDocument, "id", "", "Document id to render")
	previewCmd.Flags().StringVar(&previewAddr, "addr", "", "Listen address (default from config)")
	previewCmd.MarkFlagRequired("page")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := export.New(s, logger).ToFile(ctx, exportCollection, exportPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d documents from %q to %s\n", n, exportCollection, exportPath)
	return nil
}

func runCollections(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	names, err := s.Collections(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	pages, err := loadPages()
	if err != nil {
		return err
	}
	page := schema.FindPage(pages, previewPage)
	if page == nil {
		return fmt.Errorf("unknown page %q", previewPage)
	}

	renderer, err := render.ForPage(page, render.TargetHTML, render.Options{Theme: cfg.Theme})
	if err != nil {
		return err
	}
	if renderer == nil {
		return errors.New("page has no preview")
	}

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		mu sync.Mutex
		ed *editor.Editor
	)
	hub := preview.NewHub(
		preview.WithLogger(logger),
		preview.WithTitle(page.Title),
		preview.WithOnReady(func() {
			mu.Lock()
			defer mu.Unlock()
			if err := ed.Ready(ctx); err != nil {
				logger.Warn("Preview load failed", zap.Error(err))
			}
			logger.Info("Preview rendered", zap.String("status", ed.Status()))
		}),
	)

	mu.Lock()
	ed, err = editor.New(page, s,
		editor.WithLogger(logger),
		editor.WithPreview(renderer, hub),
	)
	if err == nil {
		coll := previewCollection
		if coll == "" {
			coll = page.DefaultCollection
		}
		err = ed.SetCollection(ctx, coll, previewDocument)
	}
	mu.Unlock()
	if err != nil {
		return err
	}

	addr := previewAddr
	if addr == "" {
		addr = cfg.Preview.Addr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving preview of %q on http://%s\n", page.Title, addr)
	return hub.ListenAndServe(ctx, addr)
}
