package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"podlocalsync/internal/models"
)

const (
	// PubDateLayout is the RFC 2822 style layout used for pubDate values.
	PubDateLayout = "Mon, 02 Jan 2006 15:04:05 +0000"

	mimeMPEG = "audio/mpeg"
	mimeM4A  = "audio/x-m4a"
)

var newGUID = func() string {
	return uuid.NewString()
}

// EpisodeInput carries the caller supplied fields and the filesystem facts
// captured for the audio file. Title and PubDate are optional.
type EpisodeInput struct {
	Title     string
	Audio     string
	PubDate   string
	Size      int64
	CreatedAt time.Time
}

// FileFacts is the stat snapshot taken for an audio file when it is added.
type FileFacts struct {
	Size      int64
	CreatedAt time.Time
}

// BuildEpisode constructs a new episode record. When feed is non-nil the audio
// name is checked against its existing episodes. The feed is never modified.
func BuildEpisode(feed *models.Feed, in EpisodeInput) (models.Episode, error) {
	audio := strings.TrimSpace(in.Audio)
	if err := models.ValidateAudioName(audio); err != nil {
		return models.Episode{}, err
	}
	if feed != nil && feed.HasAudio(audio) {
		return models.Episode{}, &models.DuplicateAudioError{Audio: audio}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle(audio)
	}

	pubDate := strings.TrimSpace(in.PubDate)
	if pubDate == "" {
		if in.CreatedAt.IsZero() {
			return models.Episode{}, &models.MissingFieldError{Field: "episode.pubdate"}
		}
		pubDate = FormatPubDate(in.CreatedAt)
	}

	return models.Episode{
		Title:   title,
		Audio:   audio,
		GUID:    newGUID(),
		Length:  strconv.FormatInt(in.Size, 10),
		Type:    MIMEType(audio),
		PubDate: pubDate,
	}, nil
}

// MIMEType maps an audio filename to its enclosure type. Only a lowercase
// ".mp3" suffix yields audio/mpeg; every other name is reported as audio/x-m4a.
func MIMEType(audio string) string {
	if strings.HasSuffix(audio, ".mp3") {
		return mimeMPEG
	}
	return mimeM4A
}

// FormatPubDate renders t in UTC using PubDateLayout.
func FormatPubDate(t time.Time) string {
	return t.UTC().Format(PubDateLayout)
}

// DefaultTitle derives a title from the file stem.
func DefaultTitle(audio string) string {
	base := filepath.Base(audio)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// StatAudio captures size and creation time of an audio file in root.
func StatAudio(root, audio string) (FileFacts, error) {
	path := filepath.Join(root, audio)
	info, err := os.Stat(path)
	if err != nil {
		return FileFacts{}, err
	}
	if info.IsDir() {
		return FileFacts{}, fmt.Errorf("%s is a directory", path)
	}

	return FileFacts{
		Size:      info.Size(),
		CreatedAt: creationTime(info).UTC().Truncate(time.Second),
	}, nil
}
