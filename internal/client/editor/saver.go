package editor

import (
	"os"
	"path/filepath"

	"github.com/fhuaranca/dniadmin/internal/filex"
)

// FileSaver is the "browser download" primitive: given bytes and a
// filename, persist them somewhere the operator can find.
type FileSaver interface {
	// Save writes data under the given filename and returns the full
	// path of the written file.
	Save(filename string, data []byte) (string, error)
}

// BackupDir saves backups into a subdirectory of the working directory,
// creating it on first use.
type BackupDir struct {
	Dir string
}

func (d BackupDir) Save(filename string, data []byte) (string, error) {
	dir, err := filex.EnsureSubdDir(d.Dir)
	if err != nil {
		return "", err
	}
	// Base strips any path components a hostile header could smuggle in.
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
