package eurotab

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/nao1215/eurotab/domain/model"
	eurotabdriver "github.com/nao1215/eurotab/driver"
)

// fsFile is a file found in an fs.FS
type fsFile struct {
	fsys fs.FS
	path string
}

// fileProcessor collects the exports a Builder extracts
type fileProcessor struct {
	validator *validator
}

// newFileProcessor creates a new file processor instance
func newFileProcessor() *fileProcessor {
	return &fileProcessor{
		validator: newValidator(),
	}
}

// collectFilesFromPaths validates and collects all files from the given paths
func (fp *fileProcessor) collectFilesFromPaths(paths []string) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		info, err := fp.validator.validatePath(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			dirFiles, err := fp.collectFilesFromDirectory(path, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
			continue
		}
		if err := fp.addSingleFile(path, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}

	return collectedPaths, nil
}

// collectFilesFromDirectory recursively collects all supported files from a
// directory. When both an export and a compressed copy exist, the
// uncompressed one wins.
func (fp *fileProcessor) collectFilesFromDirectory(dirPath string, processedFiles map[string]bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dirPath, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !model.IsSupportedFile(filePath) || !eurotabdriver.IsValidFileName(d.Name()) {
			return nil
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
		}
		if !processedFiles[absPath] {
			processedFiles[absPath] = true
			found = append(found, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return deduplicateCompressedFiles(found), nil
}

// addSingleFile adds a single file to the collected paths once
func (fp *fileProcessor) addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if !processedFiles[absPath] {
		processedFiles[absPath] = true
		*collectedPaths = append(*collectedPaths, filePath)
	}
	return nil
}

// collectFSFiles collects all supported files of filesystem recursively
func (fp *fileProcessor) collectFSFiles(filesystem fs.FS) ([]fsFile, error) {
	if filesystem == nil {
		return nil, fmt.Errorf("%w: FS cannot be nil", ErrNoInput)
	}

	var matches []string
	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !model.IsSupportedFile(path) || !eurotabdriver.IsValidFileName(d.Name()) {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no supported files found in filesystem", ErrNoInput)
	}

	matches = deduplicateCompressedFiles(matches)
	files := make([]fsFile, 0, len(matches))
	for _, m := range matches {
		files = append(files, fsFile{fsys: filesystem, path: m})
	}
	return files, nil
}

// deduplicateCompressedFiles removes compressed files whose uncompressed
// version exists in the same directory. The result is sorted.
func deduplicateCompressedFiles(files []string) []string {
	key := func(file string) string {
		return filepath.Join(filepath.Dir(file), model.TableFromFilePath(file))
	}

	// First pass: collect all uncompressed files
	tableToFile := make(map[string]string, len(files))
	for _, file := range files {
		if _, exists := tableToFile[key(file)]; !exists && !model.NewFile(file).IsCompressed() {
			tableToFile[key(file)] = file
		}
	}

	// Second pass: add compressed files only if uncompressed version doesn't exist
	for _, file := range files {
		if model.NewFile(file).IsCompressed() {
			if _, exists := tableToFile[key(file)]; !exists {
				tableToFile[key(file)] = file
			}
		}
	}

	result := make([]string, 0, len(tableToFile))
	for _, file := range tableToFile {
		result = append(result, file)
	}
	sort.Strings(result)
	return result
}
