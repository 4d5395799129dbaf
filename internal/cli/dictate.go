package cli

import (
	"github.com/spf13/cobra"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/capture"
)

func newDictateCmd(e *env) *cobra.Command {
	var echo bool

	cmd := &cobra.Command{
		Use:   "dictate",
		Short: "Collect dictation lines from stdin, then generate a note",
		Long: "Each non-blank stdin line is one finalized dictation segment, as produced by an\n" +
			"external speech-to-text process. The note is generated once input ends.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := capture.NewSession(capture.NewLineRecognizer(cmd.InOrStdin()))

			if _, err := session.Toggle(cmd.Context()); err != nil {
				return userError(err)
			}
			session.Wait()

			if err := session.Err(); err != nil {
				e.logger.WithContext(cmd.Context()).WithError(err).Warn("Dictation ended with a recognizer error")
				return userError(err)
			}

			transcript := session.Text()
			if echo {
				writeLine(cmd.ErrOrStderr(), transcript)
			}
			return generateAndPrint(cmd, e, transcript)
		},
	}

	cmd.Flags().BoolVar(&echo, "echo", false, "Print the assembled transcript to stderr")

	return cmd
}
