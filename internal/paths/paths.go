// Package paths implements input/output path selection: native pickers,
// drag-and-drop resolution and the small helpers the window uses to derive
// a default output folder and a short display name.
package paths

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// AudioExtensions is the allow-list offered by the file picker.
var AudioExtensions = []string{"wav", "flac", "ogg", "aiff", "aifc", "mp3", "aac"}

var (
	ErrNothingDropped  = errors.Base("nothing was dropped")
	ErrMultipleDropped = errors.Base("cannot accept multiple folder or file paths")
	ErrInvalidInput    = errors.Base("please select a valid input file or folder")
)

// Kind selects between picking a single file or a directory.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindFile {
		return "openFile"
	}
	return "openDirectory"
}

// Selection is the result of a picker: a chosen absolute path or a
// cancellation.
type Selection struct {
	Selected bool
	Canceled bool
	Path     string
}

func Selected(path string) Selection {
	return Selection{Selected: true, Path: path}
}

func Canceled() Selection {
	return Selection{Canceled: true}
}

// IsAudioFile reports whether path carries one of the allowed extensions.
func IsAudioFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return slices.Contains(AudioExtensions, ext)
}

// ResolveDropped turns a drag-and-drop payload into one absolute path.
func ResolveDropped(dropped []string) (string, error) {
	switch len(dropped) {
	case 0:
		return "", errors.WithStack(ErrNothingDropped)
	case 1:
	default:
		return "", errors.WithStack(ErrMultipleDropped)
	}
	abs, err := filepath.Abs(dropped[0])
	if err != nil {
		return "", errors.Errorf("resolve dropped path: %w", err)
	}
	return abs, nil
}

// DefaultOutput derives the output folder used until the user picks one:
// the parent folder of a file, or the folder itself.
func DefaultOutput(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", errors.WrapWith(err, ErrInvalidInput)
	}
	if info.IsDir() {
		return input, nil
	}
	if info.Mode().IsRegular() {
		return filepath.Dir(input), nil
	}
	return "", errors.WithStack(ErrInvalidInput)
}

// DisplayName shortens path to its last three elements, prefixed with "..".
func DisplayName(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	parent := filepath.Dir(path)
	grand := filepath.Dir(parent)
	return filepath.Join("..", filepath.Base(grand), filepath.Base(parent), base)
}

// ScanAudio lists audio files below dir, relative to dir and sorted.
// Extensions match regardless of case.
func ScanAudio(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("scan %s: %w", dir, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if IsAudioFile(m) {
			out = append(out, filepath.FromSlash(m))
		}
	}
	slices.Sort(out)
	return out, nil
}
