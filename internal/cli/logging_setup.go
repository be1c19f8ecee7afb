package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/logging"
)

// setupLogging builds the logger for this run and attaches it, tagged with a
// trace id, to the command context. --debug forces debug level console
// output on stderr with caller information.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	section := config.GetLoggingConfig()
	logCfg := section.ToLoggingConfig()

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg = logging.Config{
			Level:  "debug",
			Format: logging.FormatConsole,
			Output: logging.OutputStderr,
			Caller: true,
		}
	}

	if logCfg.Output == logging.OutputFile {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	result := logging.NewLoggerWithPath(logCfg)
	switch {
	case result.UsingFile:
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	case result.FallbackUsed:
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}
	logging.SetGlobal(result.Logger)

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	scoped := result.Logger.With().Str("trace_id", traceID).Logger()
	cmd.SetContext(scoped.WithContext(ctx))

	logger = logging.ComponentLogger(scoped, "cli")
	logger.Debug().Str("command", cmd.CommandPath()).Msg("command started")

	return result
}

// cleanupLogging closes the log file, if one was opened.
func cleanupLogging(logResult *logging.LogPathResult) error {
	if logResult == nil {
		return nil
	}
	return logResult.Close()
}
