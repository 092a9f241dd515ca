package acb

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractMany extracts every track from multiple containers into
// targetDir, processing containers concurrently with up to
// runtime.NumCPU() workers.
//
// Each container gets the same options, including sibling .awb
// discovery. The first failure cancels the remaining work and is
// returned; per-container extraction keeps Extract's abort-on-first-
// failure behavior.
func ExtractMany(ctx context.Context, paths []string, targetDir string, opts ...Option) error {
	if len(paths) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := Extract(path, targetDir, opts...); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
