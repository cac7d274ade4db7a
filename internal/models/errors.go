package models

import "fmt"

// MissingFieldError is returned when a required feed or episode field could
// not be resolved.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// DuplicateAudioError is returned when an audio file already belongs to an
// episode of the feed.
type DuplicateAudioError struct {
	Audio string
}

func (e *DuplicateAudioError) Error() string {
	return fmt.Sprintf("audio file %q is already used by another episode", e.Audio)
}

// InvalidAudioNameError is returned for audio names without a usable extension
// or that are not a plain filename.
type InvalidAudioNameError struct {
	Name string
}

func (e *InvalidAudioNameError) Error() string {
	return fmt.Sprintf("invalid audio filename %q: expected a filename in the workspace with an extension such as .mp3 or .m4a", e.Name)
}

// InvalidTextError is returned for a field holding bytes that are not valid
// UTF-8 and so cannot be written to feed.toml.
type InvalidTextError struct {
	Field string
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("field %q is not valid UTF-8", e.Field)
}
