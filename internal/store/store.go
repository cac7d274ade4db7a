package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"podlocalsync/internal/models"
)

// FileName is the name of the feed configuration inside a workspace.
const FileName = "feed.toml"

var (
	// ErrConfigNotFound is returned when the workspace has no feed yet.
	ErrConfigNotFound = fmt.Errorf("%s not found: %w", FileName, fs.ErrNotExist)
	// ErrConfigExists is returned when creating a feed over an existing one.
	ErrConfigExists = fmt.Errorf("%s already exists: %w", FileName, fs.ErrExist)
)

type document struct {
	Feed     feedSection      `toml:"feed"`
	Episodes []models.Episode `toml:"episodes,omitempty"`
}

type feedSection struct {
	Title string `toml:"title"`
	Image string `toml:"image"`
}

// Store reads and writes the feed document of one workspace.
type Store struct {
	root string
}

// New returns a store for the workspace rooted at root.
func New(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the workspace directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the absolute location of feed.toml.
func (s *Store) Path() string {
	return filepath.Join(s.root, FileName)
}

// Exists reports whether the workspace already has a feed.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.Path())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the feed.
func (s *Store) Load() (*models.Feed, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	return Decode(data)
}

// Create persists a brand new feed and refuses to overwrite an existing one.
func (s *Store) Create(feed *models.Feed) error {
	exists, err := s.Exists()
	if err != nil {
		return err
	}
	if exists {
		return ErrConfigExists
	}
	return s.Save(feed)
}

// Save validates the feed and writes it through a temporary file, so a
// failed write never leaves a truncated feed.toml behind.
func (s *Store) Save(feed *models.Feed) error {
	data, err := Encode(feed)
	if err != nil {
		return err
	}

	temp := s.Path() + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	if err := os.Rename(temp, s.Path()); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", FileName, err)
	}
	return nil
}

// Decode parses a feed document and validates it.
func Decode(data []byte) (*models.Feed, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}

	feed := &models.Feed{
		Title:    doc.Feed.Title,
		Image:    doc.Feed.Image,
		Episodes: doc.Episodes,
	}
	if err := feed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return feed, nil
}

// Encode validates the feed and serializes it as TOML.
func Encode(feed *models.Feed) ([]byte, error) {
	if feed == nil {
		return nil, &models.MissingFieldError{Field: "feed"}
	}
	if err := feed.Validate(); err != nil {
		return nil, err
	}

	doc := document{
		Feed:     feedSection{Title: feed.Title, Image: feed.Image},
		Episodes: feed.Episodes,
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s: %w", FileName, err)
	}
	return buf.Bytes(), nil
}
