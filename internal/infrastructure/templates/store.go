// Package templates serves system prompt templates from a directory on disk.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// ErrInvalidName is returned for template names that would escape the directory.
var ErrInvalidName = errors.New("template name must be a plain file name")

// Store reads *.md and *.txt templates from one directory.
type Store struct {
	dir string
}

// NewStore builds a store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the templates directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDefault creates the directory and writes default.md when it is missing.
// An existing default.md is never overwritten.
func (s *Store) EnsureDefault(content string) error {
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create templates dir: %w", err)
	}
	path := filepath.Join(s.dir, domain.DefaultTemplateName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.OutputFilePermissions)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create default template: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("write default template: %w", err)
	}
	return nil
}

// List returns the template file names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".txt") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the content of the named template.
func (s *Store) Load(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("template %s not found in %s", name, s.dir)
		}
		return "", err
	}
	return string(data), nil
}

var _ ports.TemplateStore = (*Store)(nil)
