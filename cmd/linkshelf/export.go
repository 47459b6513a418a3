package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/transfer"
	"github.com/MrSnakeDoc/linkshelf/internal/utils"
)

var (
	exportFormat string
	exportOut    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or html (Netscape)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", `Output file ("-" for stdout, default: generated name)`)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the last saved snapshot",
	Long: `Export writes the last snapshot saved by the server. Changes made since
the last snapshot write are not included; POST /api/flush first if needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := transfer.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		backend, cfg, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer utils.Close(backend)

		snap, ok, err := backend.LoadSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if !ok {
			cyan.Fprintln(os.Stderr, "No snapshot saved yet, exporting an empty shelf.")
		}

		now := time.Now()
		target := exportOut
		if target == "" {
			target = transfer.Filename(cfg.ExportTitle, format, now)
		}
		if target == "-" {
			return transfer.Export(os.Stdout, snap, format, now)
		}

		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		if err := transfer.Export(f, snap, format, now); err != nil {
			utils.Close(f)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}

		green.Fprintf(os.Stderr, "✅ Exported %d bookmarks to %s\n", len(snap.Active)+len(snap.Archived), target)
		return nil
	},
}
