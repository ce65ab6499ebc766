package eurotab

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nao1215/eurotab/domain/model"
	eurotabdriver "github.com/nao1215/eurotab/driver"
)

// validator handles input validation for Builder
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file or directory path
func (v *validator) validatePath(path string) (os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrNoInput)
	}
	if err := eurotabdriver.ValidatePath(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewErrorContext("validate", path).Error(ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	// For files, check if they are supported
	if !info.IsDir() && !model.IsSupportedFile(path) {
		return nil, NewErrorContext("validate", path).Error(ErrUnsupportedFormat)
	}
	return info, nil
}

// validateFinalState reports a helpful error when collection found nothing
func (v *validator) validateFinalState(collected int, originalPaths []string) error {
	if collected > 0 {
		return nil
	}
	for _, path := range originalPaths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return fmt.Errorf("%w: no supported files found in directory %s", ErrNoInput, path)
		}
	}
	return ErrNoInput
}
