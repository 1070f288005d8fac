// Package installer fetches registry packages into the project's modules
// directory and records them in coda.json.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/conneroisu/coda/internal/logging"
	"github.com/conneroisu/coda/internal/registry"
	"github.com/go-git/go-git/v5"
)

// DefaultModulesDir is where packages are cloned, relative to the project.
const DefaultModulesDir = "modules"

// Installer clones packages listed in a registry.
type Installer struct {
	registry   *registry.Registry
	modulesDir string
	configPath string
	progress   io.Writer
	logger     logging.Logger
}

// Options configures an Installer. Zero values select the defaults.
type Options struct {
	Registry   *registry.Registry
	ModulesDir string
	ConfigPath string
	Progress   io.Writer
	Logger     logging.Logger
}

// Result describes a completed installation.
type Result struct {
	Package registry.Package
	Path    string
	Commit  string
	// ConfigUpdated is false when the clone succeeded but coda.json could
	// not be rewritten.
	ConfigUpdated bool
}

// New creates an installer.
func New(opts Options) *Installer {
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.ModulesDir == "" {
		opts.ModulesDir = DefaultModulesDir
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultFile
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &Installer{
		registry:   opts.Registry,
		modulesDir: opts.ModulesDir,
		configPath: opts.ConfigPath,
		progress:   opts.Progress,
		logger:     opts.Logger.WithComponent("install"),
	}
}

// Install clones the named package into <modules>/<name> and adds it to the
// project's dependencies. Failing to update the configuration is logged as a
// warning and does not fail the installation.
func (i *Installer) Install(ctx context.Context, name string) (*Result, error) {
	pkg, err := i.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(i.modulesDir, pkg.Name)
	if _, err := os.Stat(dest); err == nil {
		return nil, codaerrors.NewInstallError(codaerrors.CodeCloneFailed,
			fmt.Sprintf("'%s' already exists", dest), nil).
			WithContext("package", pkg.Name).WithFile(dest)
	}

	i.logger.Info(ctx, "Cloning package", "package", pkg.Name, "url", pkg.URL, "path", dest)

	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:      pkg.URL,
		Progress: i.progress,
	})
	if err != nil {
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			i.logger.Warn(ctx, rmErr, "Could not remove partial clone", "path", dest)
		}
		return nil, codaerrors.NewInstallError(codaerrors.CodeCloneFailed,
			fmt.Sprintf("cannot clone %s", pkg.URL), err).
			WithContext("package", pkg.Name).WithFile(dest)
	}

	result := &Result{Package: pkg, Path: dest}
	if head, err := repo.Head(); err == nil {
		result.Commit = head.Hash().String()
	}

	if err := config.AddDependency(i.configPath, pkg.Name, pkg.URL); err != nil {
		i.logger.Warn(ctx, err, "Failed to update project configuration with new dependency",
			"config", i.configPath, "package", pkg.Name)
		return result, nil
	}
	result.ConfigUpdated = true

	i.logger.Info(ctx, "Package installed", "package", pkg.Name, "commit", shortHash(result.Commit))
	return result, nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// IsNotFound reports whether err means the package is not in the registry.
func IsNotFound(err error) bool {
	var ce *codaerrors.CodaError
	return errors.As(err, &ce) && ce.Code == codaerrors.CodePackageNotFound
}
