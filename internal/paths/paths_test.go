package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestKind(t *testing.T) {
	assert.Equal(t, "openFile", KindFile.String())
	assert.Equal(t, "openDirectory", KindDirectory.String())
}

func TestSelection(t *testing.T) {
	s := Selected("/audio/in.wav")
	assert.True(t, s.Selected)
	assert.False(t, s.Canceled)
	assert.Equal(t, "/audio/in.wav", s.Path)

	c := Canceled()
	assert.True(t, c.Canceled)
	assert.False(t, c.Selected)
	assert.Empty(t, c.Path)
}

func TestIsAudioFile(t *testing.T) {
	for _, name := range []string{"a.wav", "b.FLAC", "c.ogg", "d.aiff", "e.aifc", "f.mp3", "g.aac"} {
		assert.True(t, IsAudioFile(name), name)
	}
	for _, name := range []string{"notes.txt", "movie.mov", "noext", "x.opus"} {
		assert.False(t, IsAudioFile(name), name)
	}
}

func TestResolveDropped(t *testing.T) {
	_, err := ResolveDropped(nil)
	assert.True(t, errors.Is(err, ErrNothingDropped))

	_, err = ResolveDropped([]string{"/a.wav", "/b.wav"})
	assert.True(t, errors.Is(err, ErrMultipleDropped))

	got, err := ResolveDropped([]string{"in.wav"})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "in.wav", filepath.Base(got))
}

func TestDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "in.wav")
	require.NoError(t, os.WriteFile(file, []byte("RIFF"), 0o644))

	out, err := DefaultOutput(file)
	require.NoError(t, err)
	assert.Equal(t, dir, out)

	out, err = DefaultOutput(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, out)

	_, err = DefaultOutput(filepath.Join(dir, "missing.wav"))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDisplayName(t *testing.T) {
	got := DisplayName(filepath.FromSlash("/home/user/music/album/in.wav"))
	assert.Equal(t, filepath.FromSlash("../music/album/in.wav"), got)
	assert.Empty(t, DisplayName(""))
}

func TestScanAudio(t *testing.T) {
	dir := t.TempDir()
	// a folder named like an audio file is not itself listed
	files := map[string]string{
		"a.wav":              "x",
		"sub/b.FLAC":         "x",
		"sub/deep/c.mp3":     "x",
		"sub/readme.txt":     "x",
		"sub/take.Wav":       "x",
		"cover.jpg":          "x",
		"sessions.wav/d.ogg": "x",
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	got, err := ScanAudio(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a.wav",
		filepath.FromSlash("sessions.wav/d.ogg"),
		filepath.FromSlash("sub/b.FLAC"),
		filepath.FromSlash("sub/deep/c.mp3"),
		filepath.FromSlash("sub/take.Wav"),
	}, got)
}
