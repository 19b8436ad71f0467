package transform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/relabel/pkg/safeconv"
	"github.com/Sumatoshi-tech/relabel/pkg/textutil"
)

// DefaultMaxInputSize bounds the input file size when RunOptions.MaxInputSize
// is zero.
const DefaultMaxInputSize = 4 << 20

const outputFileMode = 0o644

// Path errors.
var (
	ErrDirectoryPath   = errors.New("path points to a directory")
	ErrEmptyPath       = errors.New("path is empty")
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	ErrInputTooLarge   = errors.New("input file too large")
	ErrBinaryInput     = errors.New("input file is binary")
)

// RunOptions controls file handling for Run.
type RunOptions struct {
	// MaxInputSize is the largest accepted input in bytes; zero means
	// DefaultMaxInputSize.
	MaxInputSize int64

	// DryRun skips writing the output file.
	DryRun bool
}

// RunResult is a Result plus the file paths involved.
type RunResult struct {
	*Result

	Input  string
	Output string
	Source []byte
	Wrote  bool
}

// Run reads input, transforms it and writes the generated code to output.
// Nothing is written when the target binding is not found.
// The output is written through a temporary file in the destination
// directory and renamed into place, so a failed run never leaves a partial
// destination file.
func (p *Pipeline) Run(ctx context.Context, input, output string, opts RunOptions) (*RunResult, error) {
	ctx, span := p.tracer().Start(ctx, "relabel.run",
		trace.WithAttributes(attribute.String("relabel.input", input), attribute.String("relabel.output", output)))
	defer span.End()

	started := time.Now()

	run, err := p.run(ctx, input, output, opts)

	status := "ok"
	if err != nil {
		status = "error"

		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
	}

	p.Metrics.RecordRun(ctx, status, time.Since(started))

	return run, err
}

func (p *Pipeline) run(ctx context.Context, input, output string, opts RunOptions) (*RunResult, error) {
	maxSize := opts.MaxInputSize
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}

	src, resolved, err := ReadSource(input, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	res, err := p.Transform(ctx, resolved, src)
	if err != nil {
		return nil, err
	}

	run := &RunResult{Result: res, Input: resolved, Output: output, Source: src}

	if opts.DryRun {
		return run, nil
	}

	if !res.Found {
		p.logger().InfoContext(ctx, "target not found, output left unchanged", "path", output)

		return run, nil
	}

	if err := WriteAtomic(output, []byte(res.Code)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	run.Wrote = true

	p.logger().InfoContext(ctx, "wrote output",
		"path", output, "size", humanize.IBytes(safeconv.IntToUint64(len(res.Code))), "rewritten", res.Rewritten())

	return run, nil
}

// ReadSource reads a regular text file of at most maxSize bytes and returns
// its content with the resolved absolute path.
func ReadSource(path string, maxSize int64) (content []byte, resolvedPath string, err error) {
	resolvedPath, err = resolveUserFilePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", resolvedPath, err)
	}

	if maxSize > 0 && info.Size() > maxSize {
		return nil, "", fmt.Errorf("%w: %s is %s, limit %s", ErrInputTooLarge, resolvedPath,
			humanize.IBytes(safeconv.Uint64(info.Size())), humanize.IBytes(safeconv.Uint64(maxSize)))
	}

	content, err = os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	if textutil.IsBinary(content) {
		return nil, "", fmt.Errorf("%w: %s", ErrBinaryInput, resolvedPath)
	}

	return content, resolvedPath, nil
}

// WriteAtomic replaces path with data via a temporary file and rename.
func WriteAtomic(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirectoryPath, path)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("write %s: %w", tmpName, err)
	}

	if err := os.Chmod(tmpName, outputFileMode); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}
