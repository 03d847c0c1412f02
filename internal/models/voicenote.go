package models

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// VoiceNoteEntity is the persisted reference to a recorded audio file.
// AudioURL is a file:// URL holding an absolute path.
type VoiceNoteEntity struct {
	ID        string    `json:"id"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}

// FileURL encodes an absolute path as a file:// URL string.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve audio path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

// ResolvePath parses AudioURL back into a local path.
func (v VoiceNoteEntity) ResolvePath() (string, error) {
	if v.AudioURL == "" {
		return "", fmt.Errorf("audio url is empty")
	}
	u, err := url.Parse(v.AudioURL)
	if err != nil {
		return "", fmt.Errorf("invalid audio url %q: %w", v.AudioURL, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported audio url scheme %q", u.Scheme)
	}
	p := filepath.FromSlash(u.Path)
	if isWindowsDrivePath(u.Path) {
		// file:///C:/x -> C:\x
		p = filepath.FromSlash(u.Path[1:])
	}
	if u.Path == "" || !filepath.IsAbs(p) {
		return "", fmt.Errorf("audio url %q does not hold an absolute path", v.AudioURL)
	}
	return p, nil
}

func isWindowsDrivePath(p string) bool {
	return len(p) >= 3 && p[0] == '/' && p[2] == ':'
}

// VoiceNote is the playable view of a stored entity.
type VoiceNote struct {
	ID        string    `json:"id"`
	AudioURL  string    `json:"audio_url"`
	Path      string    `json:"path"`
	IsPlaying bool      `json:"is_playing"`
	CreatedAt time.Time `json:"created_at"`
}
