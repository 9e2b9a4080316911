package converter

import (
	"fmt"
	"log/slog"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/google/uuid"
)

type Stage string

const (
	StageRead    Stage = "read"
	StageClean   Stage = "clean"
	StageProject Stage = "project"
	StageWrite   Stage = "write"
)

var stages = []Stage{StageRead, StageClean, StageProject, StageWrite}

// StageError records which stage of a file's run failed.
type StageError struct {
	File  string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Request carries the caller's choices for one run.
type Request struct {
	Cleaning types.CleaningChoice
	// Columns to keep. Nil keeps every column; an empty non-nil slice keeps
	// none.
	Columns []string
	Target  types.Format
}

func ListSupportedFormats() []types.Format {
	return SupportedFormats()
}

// ProcessFile detects the format of name and reads data into a table.
func ProcessFile(name string, data []byte) (*types.FileInfo, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	table, err := ReadTable(format, data)
	if err != nil {
		return nil, err
	}

	return &types.FileInfo{
		Name:      name,
		Format:    format,
		SizeBytes: int64(len(data)),
		Table:     table,
	}, nil
}

func ApplyCleaning(t *types.Table, choice types.CleaningChoice) *types.Table {
	return Clean(t, choice)
}

func NumericColumns(t *types.Table) []string {
	return t.NumericColumns()
}

// Convert encodes t in the target format and names the download after the
// original file.
func Convert(t *types.Table, target types.Format, originalName string) (*types.ConversionResult, error) {
	data, err := WriteTable(t, target)
	if err != nil {
		return nil, err
	}

	return &types.ConversionResult{
		InputFile:   originalName,
		FileName:    SuggestedFileName(originalName, target),
		Format:      target,
		MediaType:   target.MediaType(),
		Data:        data,
		Columns:     t.ColumnNames(),
		RowsWritten: t.NumRows(),
	}, nil
}

// Job runs one file through read, clean, project and write. The table of
// the last stage that succeeded stays on the job, so a failed write can be
// retried without reading the file again.
type Job struct {
	ID     uuid.UUID
	Name   string
	Info   *types.FileInfo
	Table  *types.Table
	Output *types.ConversionResult

	data         []byte
	progressChan chan<- float64
	logger       *slog.Logger
}

func NewJob(name string, data []byte) *Job {
	id := uuid.New()
	return &Job{
		ID:     id,
		Name:   name,
		data:   data,
		logger: slog.Default().With("job_id", id.String(), "file", name),
	}
}

// WithProgress makes the job report its completed fraction on ch. Sends
// never block; a slow reader just misses updates.
func (j *Job) WithProgress(ch chan<- float64) *Job {
	j.progressChan = ch
	return j
}

func (j *Job) reportProgress(done int) {
	if j.progressChan == nil {
		return
	}
	select {
	case j.progressChan <- float64(done) / float64(len(stages)):
	default:
	}
}

func (j *Job) fail(stage Stage, err error) error {
	j.logger.Warn("stage failed", "stage", stage, "error", err)
	return &StageError{File: j.Name, Stage: stage, Err: err}
}

// Run executes every stage of req in order and stops at the first failure.
func (j *Job) Run(req Request) (*types.ConversionResult, error) {
	if j.Info == nil {
		info, err := ProcessFile(j.Name, j.data)
		if err != nil {
			return nil, j.fail(StageRead, err)
		}
		j.Info = info
		j.Table = info.Table
		j.data = nil
		j.logger.Debug("file read", "stage", StageRead, "format", info.Format, "rows", info.RowCount(), "columns", len(info.Table.Columns))
	}
	j.reportProgress(1)

	j.Table = Clean(j.Table, req.Cleaning)
	j.logger.Debug("table cleaned", "stage", StageClean,
		"remove_duplicates", req.Cleaning.RemoveDuplicates,
		"fill_missing", req.Cleaning.FillMissingNumeric,
		"rows", j.Table.NumRows())
	j.reportProgress(2)

	if req.Columns != nil {
		projected, err := SelectColumns(j.Table, req.Columns)
		if err != nil {
			return nil, j.fail(StageProject, err)
		}
		j.Table = projected
		j.logger.Debug("columns selected", "stage", StageProject, "columns", len(projected.Columns))
	}
	j.reportProgress(3)

	return j.Retry(req.Target)
}

// Retry re-runs only the write stage against the job's current table.
func (j *Job) Retry(target types.Format) (*types.ConversionResult, error) {
	if j.Table == nil {
		return nil, j.fail(StageWrite, fmt.Errorf("no table has been read"))
	}

	out, err := Convert(j.Table, target, j.Name)
	if err != nil {
		return nil, j.fail(StageWrite, err)
	}
	j.Output = out
	j.logger.Debug("table written", "stage", StageWrite, "target", target, "bytes", len(out.Data))
	j.reportProgress(len(stages))

	return out, nil
}
