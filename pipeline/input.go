package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SupportedExtensions lists the file extensions picked up in directory runs.
var SupportedExtensions = []string{".md", ".markdown", ".txt"}

// Supported reports whether path has a supported extension.
func Supported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Input is a resolved run input.
type Input struct {
	Path  string
	IsDir bool
	Files []string
}

// ResolveInput stats path and, for a directory, lists its supported files
// sorted by path. Hidden directories are not descended into.
func ResolveInput(path string, recursive bool) (*Input, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	if !info.IsDir() {
		return &Input{Path: path, Files: []string{path}}, nil
	}

	files, err := listFiles(path, recursive)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrInputNotFound,
			strings.Join(SupportedExtensions, "/"), path)
	}
	return &Input{Path: path, IsDir: true, Files: files}, nil
}

func listFiles(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
