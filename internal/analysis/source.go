package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olehluchkiv/javadeps/internal/loader"
)

// Analyze resolves input (a local directory or a git URL) to a source root
// and runs the pipeline on it. The returned cleanup must be called once the
// result is no longer needed.
func Analyze(ctx context.Context, input string, opts Options, logger *slog.Logger) (*Result, func(), error) {
	logger.Info("resolving input", "input", input)
	dir, cleanup, err := loader.Resolve(ctx, input, logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("resolve: %w", err)
	}

	res, err := Run(ctx, dir, opts, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("analyze: %w", err)
	}
	return res, cleanup, nil
}
