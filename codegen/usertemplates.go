package codegen

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"go.rxlab.dev/toolbox/lib/fsext"
)

const (
	templateFileName = "template.tmpl"
	metadataFileName = "metadata.yaml"
)

// Metadata describes a user output kind. It is stored next to the template
// as metadata.yaml.
type Metadata struct {
	Extension   string `yaml:"extension"`
	Description string `yaml:"description,omitempty"`
}

// TemplateManager loads and installs user output kinds. Every kind lives in
// its own directory: <dir>/<name>/template.tmpl with an optional
// <dir>/<name>/metadata.yaml.
type TemplateManager struct {
	fs     fsext.Fs
	dir    string
	logger logrus.FieldLogger
}

// NewTemplateManager returns a manager for the templates under dir.
func NewTemplateManager(fs fsext.Fs, dir string, logger logrus.FieldLogger) *TemplateManager {
	return &TemplateManager{fs: fs, dir: dir, logger: logger}
}

// Dir returns the directory holding the user templates.
func (tm *TemplateManager) Dir() string {
	return tm.dir
}

// Load parses every user output kind, in name order. A missing templates
// directory yields no kinds. Directories named after a built-in kind are
// skipped with a warning.
func (tm *TemplateManager) Load() ([]*OutputKind, error) {
	exists, err := fsext.Exists(tm.fs, tm.dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	entries, err := fsext.ReadDir(tm.fs, tm.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates directory %s: %w", tm.dir, err)
	}

	var kinds []*OutputKind
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if isBuiltinKind(entry.Name()) {
			tm.logger.WithField("dir", filepath.Join(tm.dir, entry.Name())).Warnf(
				"Ignoring user template '%s', the name is taken by a built-in output kind", entry.Name())
			continue
		}
		kind, err := tm.loadKind(entry.Name())
		if err != nil {
			return nil, err
		}
		if kind != nil {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

// loadKind returns nil when the directory has no template file.
func (tm *TemplateManager) loadKind(name string) (*OutputKind, error) {
	tplPath := filepath.Join(tm.dir, name, templateFileName)
	exists, err := fsext.Exists(tm.fs, tplPath)
	if err != nil || !exists {
		return nil, err
	}

	source, err := fsext.ReadFile(tm.fs, tplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", tplPath, err)
	}

	meta, err := tm.readMetadata(name)
	if err != nil {
		return nil, err
	}

	return NewOutputKind(name, meta.Extension, meta.Description, string(source))
}

func (tm *TemplateManager) readMetadata(name string) (Metadata, error) {
	var meta Metadata
	metaPath := filepath.Join(tm.dir, name, metadataFileName)
	exists, err := fsext.Exists(tm.fs, metaPath)
	if err != nil || !exists {
		return meta, err
	}

	data, err := fsext.ReadFile(tm.fs, metaPath)
	if err != nil {
		return meta, fmt.Errorf("failed to read template metadata %s: %w", metaPath, err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse template metadata %s: %w", metaPath, err)
	}
	return meta, nil
}

// Install copies the template at sourcePath into the templates directory as
// the output kind name. The template is parsed first so a broken file is
// never installed.
func (tm *TemplateManager) Install(name, sourcePath string, meta Metadata) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("template name %q cannot contain path separators", name)
	}
	if isBuiltinKind(name) {
		return fmt.Errorf("template name %q is reserved for a built-in output kind", name)
	}

	source, err := fsext.ReadFile(tm.fs, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", sourcePath, err)
	}
	if _, err := NewOutputKind(name, meta.Extension, meta.Description, string(source)); err != nil {
		return err
	}

	kindDir := filepath.Join(tm.dir, name)
	if err := tm.fs.MkdirAll(kindDir, 0o755); err != nil {
		return fmt.Errorf("failed to create template directory %s: %w", kindDir, err)
	}
	if err := fsext.WriteFile(tm.fs, filepath.Join(kindDir, templateFileName), source, 0o644); err != nil {
		return err
	}

	metaData, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}
	return fsext.WriteFile(tm.fs, filepath.Join(kindDir, metadataFileName), metaData, 0o644)
}

// RegisterAll loads the user output kinds and adds them to r.
func (tm *TemplateManager) RegisterAll(r *Registry) error {
	kinds, err := tm.Load()
	if err != nil {
		return err
	}
	for _, k := range kinds {
		if err := r.Register(k); err != nil {
			return err
		}
	}
	return nil
}
