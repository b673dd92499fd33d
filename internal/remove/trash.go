package remove

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/dupes/internal/platform"
)

const trashInfoTimeFormat = "2006-01-02T15:04:05"

// FreedesktopTrash implements the freedesktop.org home trash: the file moves
// to <dir>/files/<name> and <dir>/info/<name>.trashinfo records where it came
// from so a file manager can restore it. Regular files on another
// filesystem than the trash directory are copied across and then removed.
type FreedesktopTrash struct {
	dir string
	now func() time.Time
}

// NewFreedesktopTrash returns a trash rooted at dir. An empty dir selects
// $XDG_DATA_HOME/Trash, falling back to ~/.local/share/Trash.
func NewFreedesktopTrash(dir string) *FreedesktopTrash {
	if dir == "" {
		dir = defaultTrashDir()
	}
	return &FreedesktopTrash{dir: dir, now: time.Now}
}

func defaultTrashDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "Trash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "Trash")
	}
	return filepath.Join(home, ".local", "share", "Trash")
}

// Dir returns the trash root.
func (t *FreedesktopTrash) Dir() string {
	return t.dir
}

// Trash moves path into the trash.
func (t *FreedesktopTrash) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return fmt.Errorf("trash %s: %w", path, err)
	}

	filesDir := filepath.Join(t.dir, "files")
	infoDir := filepath.Join(t.dir, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return fmt.Errorf("create trash directory: %w", err)
		}
	}

	name, infoPath, err := t.reserve(infoDir, filepath.Base(abs), abs)
	if err != nil {
		return err
	}
	if _, err := platform.MoveFile(abs, filepath.Join(filesDir, name)); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("trash %s: %w", path, err)
	}
	return nil
}

// reserve claims a free name in the trash by creating its .trashinfo file
// exclusively, appending .2, .3, ... on collision.
func (t *FreedesktopTrash) reserve(infoDir, base, origin string) (string, string, error) {
	info := trashInfo(origin, t.now())
	for n := 1; ; n++ {
		name := base
		if n > 1 {
			name = base + "." + strconv.Itoa(n)
		}
		infoPath := filepath.Join(infoDir, name+".trashinfo")
		f, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("create trash info: %w", err)
		}
		_, werr := f.WriteString(info)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(infoPath)
			return "", "", fmt.Errorf("write trash info: %w", err)
		}
		return name, infoPath, nil
	}
}

func trashInfo(origin string, when time.Time) string {
	var b strings.Builder
	b.WriteString("[Trash Info]\n")
	b.WriteString("Path=" + (&url.URL{Path: origin}).EscapedPath() + "\n")
	b.WriteString("DeletionDate=" + when.Format(trashInfoTimeFormat) + "\n")
	return b.String()
}
