package log

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	utimlerrors "github.com/cran/utiml/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// SetupLogger installs a JSON zerolog provider writing to stdout at the given
// level and routes library warnings through it.
func SetupLogger(loglevel string) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	SetProvider(NewZerologProvider(os.Stdout, level))
	utimlerrors.SetZerologWarnFunc(warnThroughProvider)
	return nil
}

// ToLogLevel parses "debug", "info", "warn" or "error".
func ToLogLevel(level string) (Level, error) {
	switch level {
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Newf("invalid log level: %q", level)
	}
}

func warnThroughProvider(w error) {
	fields := []any{ErrorTypeKey, fmt.Sprintf("%T", w)}
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		fields = append(fields, "warning", m)
	}
	GetLoggerWithName("warnings").Warn(w.Error(), fields...)
}

// extractStacktrace returns the first safe detail recorded by cockroachdb/errors,
// which holds the stack captured by WithStack.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
