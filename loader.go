package stockroom

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/etnz/stockroom/date"
)

// segmentExt is the extension of ledger segment files.
const segmentExt = ".jsonl"

// segmentName returns the file name of the segment receiving entries
// recorded at t by origin.
func segmentName(t time.Time, origin string) string {
	return date.Of(t).String() + "_" + origin + segmentExt
}

// findSegments walks the ledger folder and returns all segment files, sorted.
// Files with the segment extension are all segments, including the copies
// left by sync tools on conflicts. A missing folder has no segments.
func findSegments(dir string) ([]string, error) {
	var segments []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			// hidden folders belong to sync tools (.stversions, .git).
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, segmentExt) {
			segments = append(segments, p)
		}
		return nil
	})
	slices.Sort(segments)
	return segments, err
}

// lastByteIsNewline reports whether f is empty or ends with a newline.
func lastByteIsNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, info.Size()-1); err != nil {
		return false, err
	}
	return b[0] == '\n', nil
}
