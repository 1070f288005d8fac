// Package scaffolding lays out a new coda project.
package scaffolding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
)

// ProjectDirs are created by Init.
var ProjectDirs = []string{"dist", "build", "src", "modules"}

// InitOptions holds options for project initialization
type InitOptions struct {
	Dir         string
	ProjectName string
	// Force replaces an existing coda.json and starter files.
	Force bool
}

// InitResult lists what Init wrote. Skipped files already existed.
type InitResult struct {
	Created []string
	Skipped []string
	Config  string
}

// Init creates the project directories, the starter sources and coda.json.
// Existing files are kept unless opts.Force is set.
func Init(opts InitOptions) (*InitResult, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	cfg := config.Default(opts.ProjectName)

	configPath := filepath.Join(opts.Dir, config.DefaultFile)
	if !opts.Force && exists(configPath) {
		return nil, codaerrors.NewConfigError(codaerrors.CodeConfigWrite,
			fmt.Sprintf("%s already exists (use --force to overwrite)", configPath), nil).
			WithFile(configPath)
	}

	for _, dir := range ProjectDirs {
		if err := os.MkdirAll(filepath.Join(opts.Dir, dir), 0755); err != nil {
			return nil, codaerrors.NewIOError(codaerrors.CodeFileWrite,
				"cannot create project directory", err).WithFile(dir)
		}
	}

	ctx := TemplateContext{
		ProjectName: cfg.ProjectName,
		Date:        time.Now().Format("2006-01-02"),
	}

	result := &InitResult{}
	for _, tmpl := range GetBuiltinTemplates() {
		path := filepath.Join(opts.Dir, filepath.FromSlash(tmpl.Path))
		written, err := renderFile(path, tmpl, ctx, opts.Force)
		if err != nil {
			return nil, err
		}
		if written {
			result.Created = append(result.Created, tmpl.Path)
		} else {
			result.Skipped = append(result.Skipped, tmpl.Path)
		}
	}

	result.Config = configPath
	if err := config.Write(configPath, cfg, opts.Force); err != nil {
		return nil, err
	}
	result.Created = append(result.Created, config.DefaultFile)

	return result, nil
}

func renderFile(path string, tmpl FileTemplate, ctx TemplateContext, force bool) (bool, error) {
	if !force && exists(path) {
		return false, nil
	}

	t, err := template.New(tmpl.Path).Parse(tmpl.Content)
	if err != nil {
		return false, codaerrors.NewInternalError(codaerrors.CodeInvalidState,
			"invalid built-in template", err).WithFile(tmpl.Path)
	}

	f, err := os.Create(path)
	if err != nil {
		return false, codaerrors.NewIOError(codaerrors.CodeFileWrite,
			"cannot create file", err).WithFile(path)
	}
	defer f.Close()

	if err := t.Execute(f, ctx); err != nil {
		return false, codaerrors.NewIOError(codaerrors.CodeFileWrite,
			"cannot write file", err).WithFile(path)
	}
	return true, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
