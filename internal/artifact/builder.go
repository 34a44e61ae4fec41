// Package artifact packages the backend function source and its runtime
// dependencies into a single deployable archive.
package artifact

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/pkg/logging"
)

// Fixed names under the build directory. The provisioning definitions
// reference the archive at this path, so it must not move.
const (
	stagingDirName  = "package"
	ArchiveFileName = "lambda.zip"
)

// manifestFileName is the optional dependency manifest in the backend
// source directory. Its absence skips dependency installation; it is not an
// error.
const manifestFileName = "requirements.txt"

// placeholderEntry is the single file written into a placeholder archive so
// the provisioning backend never sees a zero-byte zip.
const placeholderEntry = ".placeholder"

// Builder stages backend source plus installed dependencies and compresses
// them into the archive. Every build starts from a clean staging directory;
// a previous archive is discarded. On failure the partial staging directory
// is left in place for operator inspection.
type Builder struct {
	runner     interfaces.CommandRunner
	backendDir string
	buildDir   string
	logger     *logging.Logger
}

// NewBuilder creates a builder for the given backend source and build
// output directories.
func NewBuilder(cmdRunner interfaces.CommandRunner, backendDir, buildDir string) *Builder {
	return &Builder{
		runner:     cmdRunner,
		backendDir: backendDir,
		buildDir:   buildDir,
		logger:     logging.NewLogger("artifact-builder"),
	}
}

// ArchivePath returns the fixed archive location under the build directory.
func (b *Builder) ArchivePath() string {
	return filepath.Join(b.buildDir, ArchiveFileName)
}

func (b *Builder) stagingDir() string {
	return filepath.Join(b.buildDir, stagingDirName)
}

// Build produces a fresh archive, discarding any previous one. Steps:
// recreate staging, install declared dependencies when a manifest exists,
// copy all source files, compress.
func (b *Builder) Build(ctx context.Context) (interfaces.ArchiveInfo, error) {
	staging := b.stagingDir()

	if err := os.RemoveAll(staging); err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to create staging directory: %w", err)
	}

	manifest := filepath.Join(b.backendDir, manifestFileName)
	if _, err := os.Stat(manifest); err == nil {
		b.logger.Info("Installing backend dependencies from %s", manifestFileName)
		if err := b.runner.Run(ctx, b.backendDir, nil,
			"pip", "install", "-r", manifest, "-t", staging, "--upgrade"); err != nil {
			return interfaces.ArchiveInfo{}, fmt.Errorf("dependency installation failed: %w", err)
		}
	} else {
		b.logger.Debug("No dependency manifest found, skipping installation")
	}

	if err := copyTree(b.backendDir, staging); err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to copy backend source: %w", err)
	}

	archivePath := b.ArchivePath()
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to discard previous archive: %w", err)
	}
	size, err := zipTree(staging, archivePath)
	if err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to compress archive: %w", err)
	}

	b.logger.Info("Built deployment archive %s (%d bytes)", archivePath, size)
	return interfaces.ArchiveInfo{Path: archivePath, SizeBytes: size}, nil
}

// EnsurePlaceholder guarantees an archive exists at the fixed path. The
// provisioning definitions reference the archive even when destroying, so
// teardown must not fail on its absence. An existing archive is kept as is.
func (b *Builder) EnsurePlaceholder() (interfaces.ArchiveInfo, error) {
	archivePath := b.ArchivePath()
	if info, err := os.Stat(archivePath); err == nil {
		return interfaces.ArchiveInfo{Path: archivePath, SizeBytes: info.Size()}, nil
	}

	if err := os.MkdirAll(b.buildDir, 0o755); err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to create build directory: %w", err)
	}

	f, err := os.Create(archivePath) // #nosec G304 - fixed path under the build dir
	if err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to create placeholder archive: %w", err)
	}
	zw := zip.NewWriter(f)
	if _, err := zw.Create(placeholderEntry); err != nil {
		_ = f.Close()
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to write placeholder entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to finalize placeholder archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to close placeholder archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return interfaces.ArchiveInfo{}, fmt.Errorf("failed to stat placeholder archive: %w", err)
	}
	b.logger.Info("Created placeholder archive at %s", archivePath)
	return interfaces.ArchiveInfo{Path: archivePath, SizeBytes: info.Size()}, nil
}

// copyTree copies every file under src into dst, preserving the relative
// layout. The dependency manifest itself is copied too; it is harmless in
// the archive.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src) // #nosec G304 - path comes from a directory walk
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// zipTree compresses the contents of dir into a zip archive at archivePath
// and returns the archive size in bytes. Entry names are relative to dir so
// the archive root holds the function code directly.
func zipTree(dir, archivePath string) (int64, error) {
	f, err := os.Create(archivePath) // #nosec G304 - fixed path under the build dir
	if err != nil {
		return 0, err
	}
	zw := zip.NewWriter(f)

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path) // #nosec G304 - path comes from a directory walk
		if err != nil {
			return err
		}
		_, err = io.Copy(w, in)
		_ = in.Close()
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		_ = f.Close()
		return 0, walkErr
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Ensure Builder implements the ArtifactBuilder interface
var _ interfaces.ArtifactBuilder = (*Builder)(nil)
