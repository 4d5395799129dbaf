package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/generation"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		file string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a note JSON file as a PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := afero.ReadFile(e.fs, file)
			if err != nil {
				return fmt.Errorf("read note: %w", err)
			}

			note, err := generation.DecodeNote(string(raw))
			if err != nil {
				return fmt.Errorf("%s is not a valid note: %w", file, err)
			}

			var buf bytes.Buffer
			if err := render.ExportPDF(note, &buf); err != nil {
				return fmt.Errorf("render pdf: %w", err)
			}
			if err := afero.WriteFile(e.fs, out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}

			e.logger.WithField("path", out).Info("Exported note")
			writeLine(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Note JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", render.ExportFilename, "Output PDF path")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
