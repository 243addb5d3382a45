package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var errCorruptFile = errors.New("session file is corrupt")

// FileStore keeps one JSON document per profile in a single 0600 file.
type FileStore struct {
	path    string
	profile string
}

type fileDocument struct {
	Profiles map[string]Credentials `json:"profiles"`
}

// NewFileStore creates a file-backed store for the given profile
func NewFileStore(path, profile string) *FileStore {
	return &FileStore{path: path, profile: profile}
}

func (f *FileStore) read() (fileDocument, error) {
	doc := fileDocument{Profiles: map[string]Credentials{}}

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read session file %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		return fileDocument{Profiles: map[string]Credentials{}}, fmt.Errorf("%w: %s: %v", errCorruptFile, f.path, err)
	}
	if doc.Profiles == nil {
		doc.Profiles = map[string]Credentials{}
	}
	return doc, nil
}

func (f *FileStore) write(doc fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	// write then rename so a crash never leaves a truncated file
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Load() (Credentials, error) {
	doc, err := f.read()
	if err != nil {
		return Credentials{}, err
	}
	return doc.Profiles[f.profile], nil
}

// Save replaces the credentials of the profile. A corrupt file is replaced so
// login still works; the other profiles in it are lost.
func (f *FileStore) Save(creds Credentials) error {
	doc, err := f.read()
	if errors.Is(err, errCorruptFile) {
		log.Warn().Err(err).Str("profile", f.profile).Msg("Replacing corrupt session file")
	} else if err != nil {
		return err
	}
	doc.Profiles[f.profile] = creds
	return f.write(doc)
}

func (f *FileStore) Delete() error {
	doc, err := f.read()
	corrupt := errors.Is(err, errCorruptFile)
	if corrupt {
		log.Warn().Err(err).Str("profile", f.profile).Msg("Replacing corrupt session file")
	} else if err != nil {
		return err
	}
	if _, ok := doc.Profiles[f.profile]; !ok && !corrupt {
		return nil
	}
	delete(doc.Profiles, f.profile)
	return f.write(doc)
}
