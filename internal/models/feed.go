package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Feed holds the podcast metadata and its episodes in publish order.
type Feed struct {
	Title    string
	Image    string
	Episodes []Episode
}

// NewFeed creates an empty feed. Title and image are both required.
func NewFeed(title, image string) (*Feed, error) {
	title = strings.TrimSpace(title)
	image = strings.TrimSpace(image)
	if title == "" {
		return nil, &MissingFieldError{Field: "feed.title"}
	}
	if image == "" {
		return nil, &MissingFieldError{Field: "feed.image"}
	}
	feed := &Feed{Title: title, Image: image}
	if err := feed.validateText(); err != nil {
		return nil, err
	}
	return feed, nil
}

// HasAudio reports whether an episode already references the given file.
func (f *Feed) HasAudio(audio string) bool {
	return lo.ContainsBy(f.Episodes, func(ep Episode) bool {
		return ep.Audio == audio
	})
}

// UsedAudio returns the set of audio filenames referenced by the feed.
func (f *Feed) UsedAudio() map[string]struct{} {
	used := make(map[string]struct{}, len(f.Episodes))
	for _, ep := range f.Episodes {
		used[ep.Audio] = struct{}{}
	}
	return used
}

// AddEpisode appends ep to the end of the episode list. The list is left
// untouched when the audio file is already part of the feed.
func (f *Feed) AddEpisode(ep Episode) error {
	if f.HasAudio(ep.Audio) {
		return &DuplicateAudioError{Audio: ep.Audio}
	}
	f.Episodes = append(f.Episodes, ep)
	return nil
}

// Validate checks the whole feed, as loaded from disk, for missing fields,
// unrecognised audio names and duplicate audio files.
func (f *Feed) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &MissingFieldError{Field: "feed.title"}
	}
	if strings.TrimSpace(f.Image) == "" {
		return &MissingFieldError{Field: "feed.image"}
	}
	if err := f.validateText(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(f.Episodes))
	for i, ep := range f.Episodes {
		if err := ep.Validate(); err != nil {
			return fmt.Errorf("episode %d: %w", i+1, err)
		}
		if _, ok := seen[ep.Audio]; ok {
			return fmt.Errorf("episode %d: %w", i+1, &DuplicateAudioError{Audio: ep.Audio})
		}
		seen[ep.Audio] = struct{}{}
	}
	return nil
}

func (f *Feed) validateText() error {
	if !utf8.ValidString(f.Title) {
		return &InvalidTextError{Field: "feed.title"}
	}
	if !utf8.ValidString(f.Image) {
		return &InvalidTextError{Field: "feed.image"}
	}
	return nil
}

// ValidateAudioName accepts a plain UTF-8 filename with an extension. Names
// pointing into other directories are rejected.
func ValidateAudioName(name string) error {
	ext := filepath.Ext(name)
	switch {
	case strings.TrimSpace(name) == "", ext == "", ext == ".", ext == name:
		return &InvalidAudioNameError{Name: name}
	case !utf8.ValidString(name):
		return &InvalidAudioNameError{Name: name}
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return &InvalidAudioNameError{Name: name}
	}
	return nil
}
