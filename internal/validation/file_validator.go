package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
)

// FileValidator checks input files and output locations before a run
// touches them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputFile checks that path names a readable regular file. A
// missing file yields *errors.InputNotFoundError.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &errors.InputNotFoundError{Path: path, Cause: err}
	}
	if err != nil {
		return errors.NewStorageError("failed to stat input file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.NewAppError(errors.ErrTypePermission, "input file is not readable", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		return errors.NewAppError(errors.ErrTypePermission, "output directory is not writable", err).WithContext("path", dir)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateReportFileName rejects names that could address anything outside
// the reports directory or that are not workbooks.
func (v *FileValidator) ValidateReportFileName(name string) error {
	switch {
	case name == "", name != filepath.Base(name), strings.ContainsAny(name, `/\`), strings.HasPrefix(name, "."):
		return errors.NewAppValidationError(fmt.Sprintf("invalid report file name %q", name))
	case !strings.EqualFold(filepath.Ext(name), ".xlsx"):
		return errors.NewAppValidationError(fmt.Sprintf("report file %q is not a workbook", name))
	}
	return nil
}

// ResolveWithin resolves path against dir and rejects anything that lands
// outside dir. Relative paths are taken relative to dir. The returned path
// is absolute and clean.
func (v *FileValidator) ResolveWithin(path, dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewStorageError("failed to resolve directory", err).WithContext("path", dir)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	resolved := filepath.Clean(path)

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		v.logger.Warn("path outside allowed directory",
			slog.String("path", path),
			slog.String("directory", root))
		return "", errors.NewAppValidationError(fmt.Sprintf("%s is outside %s", path, root))
	}
	return resolved, nil
}
