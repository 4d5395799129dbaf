package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/config"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/database"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

type MockNoteGenerator struct {
	mock.Mock
}

func (m *MockNoteGenerator) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	args := m.Called(ctx, transcript)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SOAPNote), args.Error(1)
}

func withMock(gen *MockNoteGenerator) Option {
	return WithGeneratorFactory(func(*config.Config, *logger.Logger) (interfaces.NoteGenerator, error) {
		return gen, nil
	})
}

// run executes the root command with args and returns stdout and stderr
func run(t *testing.T, stdin io.Reader, opts []Option, args ...string) (string, string, error) {
	t.Helper()
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	opts = append([]Option{WithConfig(&config.Config{LogLevel: "info"})}, opts...)
	cmd := NewRoot(opts...)

	var stdout, stderr bytes.Buffer
	cmd.SetIn(stdin)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	root := NewRoot()

	for _, name := range []string{"generate", "example", "dictate", "export", "audit"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
		assert.NotEmpty(t, sub.Short, name)
		assert.NotNil(t, sub.RunE, name)
	}
}

func TestGenerate_FromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "visit.txt", []byte("Patient has a sore throat."), 0o644))

	gen := new(MockNoteGenerator)
	gen.On("Generate", mock.Anything, "Patient has a sore throat.").Return(types.ExampleNote(), nil)

	stdout, _, err := run(t, nil, []Option{WithFs(fs), withMock(gen)}, "generate", "--file", "visit.txt")

	require.NoError(t, err)
	raw, err := render.RawJSON(types.ExampleNote())
	require.NoError(t, err)
	assert.Equal(t, raw+"\n", stdout)
	gen.AssertExpectations(t)
}

func TestGenerate_FromStdin(t *testing.T) {
	gen := new(MockNoteGenerator)
	gen.On("Generate", mock.Anything, "fever for 3 days\n").Return(types.ExampleNote(), nil)

	stdout, _, err := run(t, strings.NewReader("fever for 3 days\n"), []Option{withMock(gen)}, "generate")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"chiefComplaint": "Fever and dry cough for 3 days."`)
	gen.AssertExpectations(t)
}

func TestGenerate_MissingFile(t *testing.T) {
	gen := new(MockNoteGenerator)

	_, _, err := run(t, nil, []Option{WithFs(afero.NewMemMapFs()), withMock(gen)}, "generate", "-f", "nope.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read transcript")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_FailureShowsUserMessage(t *testing.T) {
	gen := new(MockNoteGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, types.NewNetworkError(assert.AnError))

	stdout, _, err := run(t, strings.NewReader("cough"), []Option{withMock(gen)}, "generate")

	require.Error(t, err)
	assert.Equal(t, types.MsgNetworkFailure, err.Error())
	assert.Empty(t, stdout)
}

func TestGenerate_NoCredential(t *testing.T) {
	_, _, err := run(t, strings.NewReader("cough"), nil, "generate")

	require.Error(t, err)
	assert.Equal(t, types.MsgMissingCredential, err.Error())
}

func TestExample(t *testing.T) {
	stdout, _, err := run(t, nil, nil, "example")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Transcript:\n"+types.ExampleTranscript))
	assert.Contains(t, stdout, "Note:\n{")
	assert.Contains(t, stdout, `"code": "J06.9"`)

	stdout, _, err = run(t, nil, nil, "example", "--transcript")
	require.NoError(t, err)
	assert.Equal(t, types.ExampleTranscript+"\n", stdout)
}

func TestDictate_JoinsSegments(t *testing.T) {
	gen := new(MockNoteGenerator)
	gen.On("Generate", mock.Anything, "Patient reports cough. No fever today.").Return(types.ExampleNote(), nil)

	stdin := strings.NewReader("  Patient reports cough.\n\n   \nNo fever today.\n")
	stdout, stderr, err := run(t, stdin, []Option{withMock(gen)}, "dictate", "--echo")

	require.NoError(t, err)
	assert.Equal(t, "Patient reports cough. No fever today.\n", stderr)
	assert.Contains(t, stdout, `"subjective"`)
	gen.AssertExpectations(t)
}

func TestDictate_EmptyInput(t *testing.T) {
	gen := new(MockNoteGenerator)
	gen.On("Generate", mock.Anything, "").Return(nil, types.NewInputError())

	_, _, err := run(t, strings.NewReader("\n\n"), []Option{withMock(gen)}, "dictate")

	require.Error(t, err)
	assert.Equal(t, types.MsgEmptyTranscript, err.Error())
}

func TestDictate_RecognizerError(t *testing.T) {
	gen := new(MockNoteGenerator)

	_, _, err := run(t, iotest.ErrReader(assert.AnError), []Option{withMock(gen)}, "dictate")

	require.Error(t, err)
	assert.Equal(t, "Speech recognition error: "+assert.AnError.Error(), err.Error())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExport_WritesPDF(t *testing.T) {
	fs := afero.NewMemMapFs()
	raw, err := render.RawJSON(types.ExampleNote())
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "note.json", []byte(raw), 0o644))

	stdout, _, err := run(t, nil, []Option{WithFs(fs)}, "export", "--file", "note.json")

	require.NoError(t, err)
	assert.Equal(t, render.ExportFilename+"\n", stdout)

	pdf, err := afero.ReadFile(fs, render.ExportFilename)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestExport_CustomOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	raw, err := render.RawJSON(types.ExampleNote())
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "note.json", []byte(raw), 0o644))
	require.NoError(t, fs.MkdirAll("out", 0o755))

	_, _, err = run(t, nil, []Option{WithFs(fs)}, "export", "-f", "note.json", "-o", "out/visit.pdf")

	require.NoError(t, err)
	exists, err := afero.Exists(fs, "out/visit.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExport_InvalidNote(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "note.json", []byte(`{"subjective": "nope"}`), 0o644))

	_, _, err := run(t, nil, []Option{WithFs(fs)}, "export", "--file", "note.json")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
	exists, _ := afero.Exists(fs, render.ExportFilename)
	assert.False(t, exists)
}

func TestExport_RequiresFile(t *testing.T) {
	_, _, err := run(t, nil, []Option{WithFs(afero.NewMemMapFs())}, "export")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "file" not set`)
}

func TestAudit_ListsEvents(t *testing.T) {
	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	created := time.Date(2025, 5, 2, 11, 0, 0, 0, time.UTC)
	dbMock.ExpectQuery("SELECT id, request_id, mode").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "mode", "transcript_length", "outcome", "duration_ms", "created_at"}).
			AddRow("e-1", "req-9", "direct", 412, "success", int64(1500), created))
	dbMock.ExpectQuery("SELECT outcome, COUNT").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"outcome", "count"}).
			AddRow("success", 7).
			AddRow("network", 2))
	dbMock.ExpectClose()

	opener := WithDatabaseOpener(func(context.Context, *config.Config, *logger.Logger) (*database.DB, error) {
		return database.Wrap(sqlDB, logger.Discard()), nil
	})

	stdout, _, err := run(t, nil, []Option{opener}, "audit", "-n", "5", "--since", "1h")

	require.NoError(t, err)
	assert.Contains(t, stdout, "2025-05-02T11:00:00Z")
	assert.Contains(t, stdout, "req-9")
	assert.Contains(t, stdout, "1.5s")
	assert.Contains(t, stdout, "Outcomes in the last 1h0m0s:\n  network: 2\n  success: 7\n")
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAudit_Disabled(t *testing.T) {
	_, _, err := run(t, nil, nil, "audit")

	require.Error(t, err)
	assert.Equal(t, "audit log is disabled: set DATABASE_URL", err.Error())
}
