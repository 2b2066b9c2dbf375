package diagnose

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/twinetools/chapbook-ls/pkg/debug"
	"github.com/twinetools/chapbook-ls/pkg/diagnostic"
	"github.com/twinetools/chapbook-ls/pkg/finder"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/index"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type Handler struct {
	dir           string
	pattern       string
	formatVersion string
	debug         bool

	fs afero.Fs
}

func NewDiagnoseCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "analyze passage files and print their diagnostics",
	}

	cmd.Flags().StringVar(&me.dir, "dir", ".", "directory to scan")
	cmd.Flags().StringVar(&me.pattern, "pattern", finder.DefaultPattern, "glob pattern for passage files")
	cmd.Flags().StringVar(&me.formatVersion, "format-version", "", "story format version used for gating (e.g. 2.2.0)")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().
		Timestamp().
		Logger()
	if me.debug {
		logger = debug.Console(os.Stderr, zerolog.DebugLevel)
	}
	logger = logger.With().Str("component", "diagnose").Logger()
	ctx = logger.WithContext(ctx)

	cfg, err := diagnostic.LoadConfig()
	if err != nil {
		return errors.Errorf("loading configuration: %w", err)
	}

	base := afero.NewBasePathFs(me.fs, me.dir)
	files, err := finder.NewDefaultFinder().FindStories(ctx, base, me.pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %q under %s", me.pattern, me.dir)
	}

	storyFormat := format.StoryFormat{Format: "chapbook", FormatVersion: me.formatVersion}
	idx := index.NewInMemory()

	type analyzed struct {
		path string
		text string
		res  *parser.Result
	}

	// First pass parses everything so the second pass sees the whole
	// project's registrations and assignments.
	var parsed []analyzed
	var readErrs error
	for _, path := range files {
		data, err := afero.ReadFile(base, path)
		if err != nil {
			readErrs = multierr.Append(readErrs, errors.Errorf("reading %s: %w", path, err))
			continue
		}
		text := string(data)
		res := parser.Parse(ctx, parser.Whole(path, text), storyFormat, idx)
		idx.SetReferences(path, res.References)
		idx.SetDefinitions(path, res.Definitions)
		parsed = append(parsed, analyzed{path: path, text: text, res: res})
	}

	errorCount, warningCount := 0, 0
	for _, doc := range parsed {
		diags := append([]symbols.Diagnostic(nil), doc.res.Diagnostics...)
		diags = append(diags, diagnostic.Generate(ctx, doc.res.References, idx, cfg)...)
		sort.SliceStable(diags, func(i, j int) bool {
			a, b := diags[i].Range.Start, diags[j].Range.Start
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Character < b.Character
		})

		m := position.NewMapper(doc.text)
		for _, d := range diags {
			switch d.Severity {
			case symbols.SeverityError:
				errorCount++
			default:
				warningCount++
			}
			printDiagnostic(out, doc.path, m, d)
		}
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s) in %d file(s)\n", errorCount, warningCount, len(parsed))

	if errorCount > 0 {
		readErrs = multierr.Append(readErrs, errors.Errorf("%d error(s) found", errorCount))
	}
	return readErrs
}

// printDiagnostic writes one finding with its source line and a caret
// underline aligned by grapheme cluster, so wide and combining characters
// don't skew the markers.
func printDiagnostic(out io.Writer, path string, m *position.Mapper, d symbols.Diagnostic) {
	severity := "warning"
	if d.Severity == symbols.SeverityError {
		severity = "error"
	}
	fmt.Fprintf(out, "%s:%d:%d: %s: %s\n", path, d.Range.Start.Line+1, d.Range.Start.Character+1, severity, d.Message)

	if d.Range.Start.Line >= m.LineCount() {
		return
	}
	line := m.LineText(d.Range.Start.Line)
	fmt.Fprintf(out, "  %s\n", line)

	lineStart := m.LineStart(d.Range.Start.Line)
	startByte := m.Offset(d.Range.Start) - lineStart
	endByte := len(line)
	if d.Range.End.Line == d.Range.Start.Line {
		endByte = m.Offset(d.Range.End) - lineStart
	}
	if startByte > len(line) {
		startByte = len(line)
	}
	if endByte > len(line) {
		endByte = len(line)
	}

	pad := strings.Repeat(" ", graphemes(line[:startByte]))
	width := graphemes(line[startByte:endByte])
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(out, "  %s%s\n", pad, strings.Repeat("^", width))
}

func graphemes(s string) int {
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		return len(s)
	}
	return n
}
