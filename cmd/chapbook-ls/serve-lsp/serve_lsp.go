package serve_lsp

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/twinetools/chapbook-ls/pkg/debug"
	"github.com/twinetools/chapbook-ls/pkg/diagnostic"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/lsp"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	debug         bool
	formatVersion string
	version       string
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.formatVersion, "format-version", "", "story format version used for gating (e.g. 2.2.0)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	// stdout carries the protocol; logs go to stderr.
	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().
		Timestamp().
		Logger()
	if me.debug {
		logger = debug.Console(os.Stderr, zerolog.DebugLevel)
	}
	logger = logger.With().Str("component", "lsp-server").Logger()
	ctx = logger.WithContext(ctx)

	cfg, err := diagnostic.LoadConfig()
	if err != nil {
		return errors.Errorf("loading configuration: %w", err)
	}

	storyFormat := format.StoryFormat{Format: "chapbook", FormatVersion: me.formatVersion}
	service := lsp.NewService(storyFormat, cfg)
	handler := lsp.NewHandler(ctx, service, me.version)

	zerolog.Ctx(ctx).Info().
		Str("format_version", me.formatVersion).
		Msg("starting language server")

	if err := handler.RunStdio(); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
