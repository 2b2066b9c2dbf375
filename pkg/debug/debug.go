// Package debug builds the human-readable logger the CLI switches to under
// --debug. Plain JSON to stderr stays the default everywhere else.
package debug

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Console returns a colorized console logger with caller annotations.
func Console(w io.Writer, level zerolog.Level) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05.000",
		FormatCaller: func(i any) string {
			s, _ := i.(string)
			return FormatCaller(s, true)
		},
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Caller().Logger()
}

// FormatCaller renders a caller value (path:line) with the file name
// emphasized so it stands out in a stream of debug lines.
func FormatCaller(caller string, colorize bool) string {
	if caller == "" {
		return ""
	}
	path, line := caller, ""
	if i := strings.LastIndexByte(caller, ':'); i >= 0 {
		path, line = caller[:i], caller[i+1:]
	}
	file := FileNameOfPath(path)
	if line == "" {
		return file
	}
	if !colorize {
		return file + ":" + line
	}
	sep := color.New(color.Faint).Sprint(":")
	return color.New(color.Bold).Sprint(file) + sep + color.New(color.FgHiRed).Sprint(line)
}

// FileNameOfPath returns the last element of a slash-separated path.
func FileNameOfPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
