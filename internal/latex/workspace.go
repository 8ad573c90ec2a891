package latex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Workspace is the scoped working directory for one generation request.
// Every request gets its own directory under the configured parent, so
// concurrent requests cannot collide, and Close removes it on every exit
// path. A workspace marked for preservation is moved into the debug
// directory instead, for manual inspection of failed runs.
type Workspace struct {
	Dir string

	budget   int64
	debugDir string
}

// NewWorkspace creates a fresh scoped directory. An empty parent falls back
// to the system temp directory. maxInput bounds the combined bytes staged
// into the workspace.
func NewWorkspace(parent string, maxInput int64) (*Workspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "cv_gen_*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir, budget: maxInput}, nil
}

// StageSource writes the prepared template source into the workspace and
// returns its path.
func (w *Workspace) StageSource(name, content string) (string, error) {
	if err := w.spend(int64(len(content))); err != nil {
		return "", err
	}
	path := filepath.Join(w.Dir, name+".tex")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("stage template source: %w", err)
	}
	return path, nil
}

// CopyAssets copies the side-files a template references by relative path:
// the profile picture next to the templates, plus the assets/ tree when one
// exists. Missing side-files are not an error.
func (w *Workspace) CopyAssets(templatesDir string) error {
	pic := filepath.Join(templatesDir, "profile_pic.jpg")
	if _, err := os.Stat(pic); err == nil {
		if err := w.copyFile(pic, filepath.Join(w.Dir, "profile_pic.jpg")); err != nil {
			return err
		}
	}

	assets := filepath.Join(templatesDir, "assets")
	if _, err := os.Stat(assets); os.IsNotExist(err) {
		return nil
	}
	return w.copyTree(assets, w.Dir)
}

func (w *Workspace) copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read assets dir: %w", err)
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := os.MkdirAll(to, 0o755); err != nil {
				return fmt.Errorf("create asset dir: %w", err)
			}
			if err := w.copyTree(from, to); err != nil {
				return err
			}
			continue
		}
		if err := w.copyFile(from, to); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat asset %s: %w", src, err)
	}
	if err := w.spend(info.Size()); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open asset %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create asset copy %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy asset %s: %w", src, err)
	}
	return out.Close()
}

func (w *Workspace) spend(n int64) error {
	w.budget -= n
	if w.budget < 0 {
		return ErrInputTooLarge
	}
	return nil
}

// PreserveIn marks the workspace so Close moves it into dir instead of
// deleting it.
func (w *Workspace) PreserveIn(dir string) {
	w.debugDir = dir
}

// Close disposes of the workspace. Preserved workspaces are moved to the
// debug directory; when the move fails they are removed like any other.
func (w *Workspace) Close() error {
	if w.debugDir != "" {
		if err := os.MkdirAll(w.debugDir, 0o755); err == nil {
			dst := filepath.Join(w.debugDir, filepath.Base(w.Dir))
			if err := os.Rename(w.Dir, dst); err == nil {
				return nil
			}
		}
	}
	return os.RemoveAll(w.Dir)
}
