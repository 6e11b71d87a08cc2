package cliconf

import (
	"os"
	"path/filepath"
	"strings"
)

// PathEnv lists extra module search roots, separated by os.PathListSeparator.
const PathEnv = "CLICONF_PATH"

// ModuleFinder locates the file implementing a dotted module name.
type ModuleFinder struct {
	roots      []string
	extensions []string
}

// NewModuleFinder constructs a finder that searches roots, in order, for files
// with one of extensions.
func NewModuleFinder(roots []string, extensions []string) *ModuleFinder {
	return &ModuleFinder{
		roots:      append([]string(nil), roots...),
		extensions: append([]string(nil), extensions...),
	}
}

// DefaultModuleRoots returns the working directory followed by CLICONF_PATH entries.
func DefaultModuleRoots() []string {
	roots := []string{"."}
	if wd, err := os.Getwd(); err == nil {
		roots[0] = wd
	}
	for _, root := range filepath.SplitList(os.Getenv(PathEnv)) {
		if root = strings.TrimSpace(root); root != "" {
			roots = append(roots, root)
		}
	}
	return roots
}

// Roots lists the search roots.
func (f *ModuleFinder) Roots() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.roots...)
}

// Locate maps a.b.c to <root>/a/b/c<ext> or <root>/a/b/c/index<ext>.
func (f *ModuleFinder) Locate(module string) (string, bool) {
	if f == nil || !validModuleName(module) {
		return "", false
	}
	rel := filepath.Join(strings.Split(module, ".")...)
	for _, root := range f.roots {
		for _, ext := range f.extensions {
			for _, candidate := range []string{
				filepath.Join(root, rel+ext),
				filepath.Join(root, rel, "index"+ext),
			} {
				if isRegularFile(candidate) {
					return candidate, true
				}
			}
		}
	}
	return "", false
}

func validModuleName(module string) bool {
	if module == "" {
		return false
	}
	for _, part := range strings.Split(module, ".") {
		if part == "" || strings.ContainsAny(part, `/\:`) {
			return false
		}
	}
	return true
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
