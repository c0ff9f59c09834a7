package setlist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoSetFile is returned when a folder holds no usable set-list file.
var ErrNoSetFile = errors.New("no set file found")

// folderDateLayout is the date prefix of set folder names, e.g. "2025.03.14 Club".
const folderDateLayout = "2006.01.02"

// Folder is a candidate set folder under the set root.
type Folder struct {
	Name string
	Path string
	// Date is parsed from a YYYY.MM.DD name prefix; zero when absent.
	Date time.Time
}

// Dated reports whether the folder name carries a date prefix.
func (f Folder) Dated() bool {
	return !f.Date.IsZero()
}

// FindSetFile returns the set-list file inside dir. Non-empty .txt files
// whose name contains "raw" win, then any non-empty .txt file, in name order.
func FindSetFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read set folder: %w", err)
	}
	var raw, other []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if strings.Contains(strings.ToLower(stem), "raw") {
			raw = append(raw, path)
		} else {
			other = append(other, path)
		}
	}
	sort.Strings(raw)
	sort.Strings(other)
	switch {
	case len(raw) > 0:
		return raw[0], nil
	case len(other) > 0:
		return other[0], nil
	default:
		return "", fmt.Errorf("%w in %s", ErrNoSetFile, dir)
	}
}

// ListSetFolders returns the immediate sub-folders of root sorted by name.
func ListSetFolders(root string) ([]Folder, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("set root %s does not exist: %w", root, err)
		}
		return nil, fmt.Errorf("read set root: %w", err)
	}
	folders := make([]Folder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folders = append(folders, Folder{
			Name: entry.Name(),
			Path: filepath.Join(root, entry.Name()),
			Date: folderDate(entry.Name()),
		})
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

func folderDate(name string) time.Time {
	if len(name) < len(folderDateLayout) {
		return time.Time{}
	}
	parsed, err := time.Parse(folderDateLayout, name[:len(folderDateLayout)])
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// SuggestFolder picks the folder for the next set: the earliest dated folder
// on or after today, else the most recent past one, else the first folder.
// Returns -1 when folders is empty.
func SuggestFolder(folders []Folder, today time.Time) int {
	if len(folders) == 0 {
		return -1
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	future, past := -1, -1
	for i, f := range folders {
		if !f.Dated() {
			continue
		}
		if !f.Date.Before(day) {
			if future < 0 || f.Date.Before(folders[future].Date) {
				future = i
			}
			continue
		}
		if past < 0 || f.Date.After(folders[past].Date) {
			past = i
		}
	}
	switch {
	case future >= 0:
		return future
	case past >= 0:
		return past
	default:
		return 0
	}
}
