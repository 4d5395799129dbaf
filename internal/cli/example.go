package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func newExampleCmd(e *env) *cobra.Command {
	var transcriptOnly bool

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print the example transcript and its note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if transcriptOnly {
				writeLine(out, types.ExampleTranscript)
				return nil
			}

			raw, err := render.RawJSON(types.ExampleNote())
			if err != nil {
				return fmt.Errorf("encode note: %w", err)
			}
			writeLine(out, "Transcript:")
			writeLine(out, types.ExampleTranscript)
			writeLine(out)
			writeLine(out, "Note:")
			writeLine(out, raw)
			return nil
		},
	}

	cmd.Flags().BoolVar(&transcriptOnly, "transcript", false, "Print only the transcript, for piping into generate")

	return cmd
}
