package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func newGenerateCmd(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a SOAP note from a transcript file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := readTranscript(e.fs, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return generateAndPrint(cmd, e, transcript)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Transcript file (default: stdin)")

	return cmd
}

func readTranscript(fs afero.Fs, file string, stdin io.Reader) (string, error) {
	if file == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := afero.ReadFile(fs, file)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(b), nil
}

// generateAndPrint runs one generation and writes the note as pretty JSON.
// Failures print the user-facing message, never the underlying cause.
func generateAndPrint(cmd *cobra.Command, e *env, transcript string) error {
	generator, err := e.newGenerator(e.cfg, e.logger)
	if err != nil {
		return userError(err)
	}

	note, err := generator.Generate(cmd.Context(), transcript)
	if err != nil {
		e.logger.WithContext(cmd.Context()).WithError(err).Debug("Generation failed")
		return userError(err)
	}

	raw, err := render.RawJSON(note)
	if err != nil {
		return fmt.Errorf("encode note: %w", err)
	}
	writeLine(cmd.OutOrStdout(), raw)
	return nil
}

// userError reduces generation failures to the text a user should see
func userError(err error) error {
	var ge *types.GenerationError
	if errors.As(err, &ge) {
		return errors.New(types.UserMessage(err))
	}
	return err
}
