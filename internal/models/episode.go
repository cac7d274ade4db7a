package models

import "unicode/utf8"

// Episode is a single entry in the feed, backed by one audio file in the
// workspace. All fields are stored as text exactly as they appear in feed.toml.
type Episode struct {
	Title   string `toml:"title" json:"title"`
	Audio   string `toml:"audio" json:"audio"`
	GUID    string `toml:"guid" json:"guid"`
	Length  string `toml:"length" json:"length"`
	Type    string `toml:"type" json:"type"`
	PubDate string `toml:"pubdate" json:"pubdate"`
}

// Validate reports the first required field that is empty or malformed.
// Every field must be valid UTF-8 to survive a trip through feed.toml.
func (e Episode) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", e.Title},
		{"audio", e.Audio},
		{"guid", e.GUID},
		{"length", e.Length},
		{"type", e.Type},
		{"pubdate", e.PubDate},
	}
	for _, f := range fields {
		if f.value == "" {
			return &MissingFieldError{Field: "episode." + f.name}
		}
	}
	if err := ValidateAudioName(e.Audio); err != nil {
		return err
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return &InvalidTextError{Field: "episode." + f.name}
		}
	}
	return nil
}
