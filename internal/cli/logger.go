package cli

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a production-encoded logger writing to w. verbose forces
// debug level; otherwise level is parsed from the log_level setting.
func newLogger(w io.Writer, level string, verbose bool) (*zap.Logger, error) {
	lvl := zapcore.DebugLevel
	if !verbose {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
		}
		lvl = parsed
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
