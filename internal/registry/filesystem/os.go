package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	temporaryFilePatternTemplateConstant = ".%s.*.tmp"
	atomicWriteErrorTemplateConstant     = "failed to write %s: %w"
)

// FileSystem exposes the file operations used by file-backed registry adapters.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, data []byte, permissions fs.FileMode) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to a sibling temporary file and renames it over path,
// so readers never observe a partially written manifest.
func (OSFileSystem) WriteFileAtomic(path string, data []byte, permissions fs.FileMode) error {
	directory := filepath.Dir(path)
	temporaryFile, createError := os.CreateTemp(directory, fmt.Sprintf(temporaryFilePatternTemplateConstant, filepath.Base(path)))
	if createError != nil {
		return fmt.Errorf(atomicWriteErrorTemplateConstant, path, createError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(data); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(atomicWriteErrorTemplateConstant, path, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(atomicWriteErrorTemplateConstant, path, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, permissions); chmodError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(atomicWriteErrorTemplateConstant, path, chmodError)
	}
	if renameError := os.Rename(temporaryPath, path); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(atomicWriteErrorTemplateConstant, path, renameError)
	}
	return nil
}
