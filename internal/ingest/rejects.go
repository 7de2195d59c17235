package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"milelog/internal/fileutil"
)

// Folders under an error directory that receive sources kept out of the log.
const (
	UnreadableFolder = "unreadable"
	MultiReadFolder  = "multi_read"
)

// RejectFolder names the error folder for status, or "" when sources with
// that status are not set aside.
func RejectFolder(status Status) string {
	switch status {
	case StatusUnreadable:
		return UnreadableFolder
	case StatusAmbiguous:
		return MultiReadFolder
	default:
		return ""
	}
}

// CopyRejected copies unreadable and ambiguous sources into their folders
// under dir, keeping the base name. Existing copies are overwritten. The
// returned map holds the destination of each copied reading by index.
func CopyRejected(readings []Reading, dir string) (map[int]string, error) {
	out := make(map[int]string)
	for i, r := range readings {
		folder := RejectFolder(r.Status)
		if folder == "" {
			continue
		}
		target := filepath.Join(dir, folder)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return out, fmt.Errorf("create %s: %w", target, err)
		}
		dest := filepath.Join(target, filepath.Base(r.Source.Path))
		if err := fileutil.CopyFileVerified(r.Source.Path, dest); err != nil {
			return out, fmt.Errorf("copy %s to %s: %w", r.Source.Path, folder, err)
		}
		out[i] = dest
	}
	return out, nil
}
