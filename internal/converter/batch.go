package converter

import (
	"context"
	"errors"

	"github.com/nconklindev/sweeper/internal/types"

	"golang.org/x/sync/errgroup"
)

// Upload is a named, fully buffered file supplied by the caller.
type Upload struct {
	Name string
	Data []byte
}

// Result is the outcome of one file in a batch. On failure Stage names the
// stage that failed and Table holds the last table that was produced.
type Result struct {
	Name   string
	JobID  string
	Info   *types.FileInfo
	Table  *types.Table
	Output *types.ConversionResult
	Stage  Stage
	Err    error
}

// ProcessBatch runs every upload through req independently, at most workers
// at a time (workers < 1 means one per file). A failing file never stops its
// siblings. Results are returned in upload order.
func ProcessBatch(ctx context.Context, uploads []Upload, req Request, workers int) []Result {
	results := make([]Result, len(uploads))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, up := range uploads {
		g.Go(func() error {
			results[i] = runUpload(ctx, up, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runUpload(ctx context.Context, up Upload, req Request) Result {
	job := NewJob(up.Name, up.Data)
	res := Result{Name: up.Name, JobID: job.ID.String()}

	if err := ctx.Err(); err != nil {
		res.Stage, res.Err = StageRead, err
		return res
	}

	out, err := job.Run(req)
	res.Info, res.Table, res.Output = job.Info, job.Table, out
	if err != nil {
		res.Err = err
		var se *StageError
		if errors.As(err, &se) {
			res.Stage = se.Stage
		}
	}
	return res
}
