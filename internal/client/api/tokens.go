package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/filex"
)

// TokenStore keeps the session between CLI invocations.
type TokenStore interface {
	Load() (models.TokenPair, error)
	Save(pair models.TokenPair) error
	Clear() error
}

// FileTokenStore keeps the token pair in a 0600 JSON file.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) (*FileTokenStore, error) {
	p, err := filex.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &FileTokenStore{path: p}, nil
}

// Load fails with common.ErrorNotAuthenticated when nobody is logged in.
func (s *FileTokenStore) Load() (models.TokenPair, error) {
	var pair models.TokenPair
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return pair, fmt.Errorf("%w: run `talkflo login` first", common.ErrorNotAuthenticated)
	}
	if err != nil {
		return pair, err
	}
	if err := json.Unmarshal(data, &pair); err != nil {
		return pair, fmt.Errorf("token file %s: %w", s.path, err)
	}
	if pair.AccessToken == "" {
		return pair, fmt.Errorf("%w: run `talkflo login` first", common.ErrorNotAuthenticated)
	}
	return pair, nil
}

func (s *FileTokenStore) Save(pair models.TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
