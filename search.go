package yp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// StdioName names standard input or standard output.
const StdioName = "-"

// FindFile finds the file named by an include. A leading ~ is
// expanded, and absolute names are returned as they are. Relative
// names are looked up in the directories of the parent files, nearest
// first, then in the working directory, then in the include paths.
func (p *Processor) FindFile(name string, parents []string) (string, error) {
	if name == StdioName {
		return name, nil
	}
	name, err := homedir.Expand(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return name, nil
	}
	for _, dir := range p.searchDirs(parents) {
		cand := filepath.Join(dir, name)
		if _, err := os.Stat(cand); err == nil {
			return cand, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (p *Processor) searchDirs(parents []string) []string {
	var dirs []string
	for i := len(parents) - 1; i >= 0; i-- {
		if parents[i] == StdioName {
			continue
		}
		dirs = append(dirs, filepath.Dir(parents[i]))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	for _, dir := range p.IncludePaths {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
