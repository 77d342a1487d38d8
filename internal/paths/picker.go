package paths

import (
	"path/filepath"

	"github.com/ncruces/zenity"
	"gitlab.com/tozd/go/errors"
)

// Picker opens a selection dialog of the given kind.
type Picker interface {
	Pick(kind Kind) (Selection, error)
}

// NativePicker uses the operating system's own file dialogs, so the audio
// extension filter is enforced by the dialog rather than re-checked here.
type NativePicker struct {
	Title string
	// Dir is where the dialog opens, if set.
	Dir string
}

func (p NativePicker) Pick(kind Kind) (Selection, error) {
	opts := []zenity.Option{zenity.Title(p.title(kind))}
	if p.Dir != "" {
		opts = append(opts, zenity.Filename(p.Dir+string(filepath.Separator)))
	}
	if kind == KindDirectory {
		opts = append(opts, zenity.Directory())
	} else {
		opts = append(opts, audioFilter())
	}

	path, err := zenity.SelectFile(opts...)
	if errors.Is(err, zenity.ErrCanceled) {
		return Canceled(), nil
	}
	if err != nil {
		return Selection{}, errors.Errorf("%s dialog: %w", kind, err)
	}
	if path == "" {
		return Canceled(), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Selection{}, errors.Errorf("resolve selection: %w", err)
	}
	return Selected(abs), nil
}

func (p NativePicker) title(kind Kind) string {
	if p.Title != "" {
		return p.Title
	}
	if kind == KindFile {
		return "Select an audio file"
	}
	return "Select a folder"
}

func audioFilter() zenity.FileFilters {
	patterns := make([]string, 0, len(AudioExtensions))
	for _, ext := range AudioExtensions {
		patterns = append(patterns, "*."+ext)
	}
	return zenity.FileFilters{{Name: "Audio Files", Patterns: patterns}}
}
