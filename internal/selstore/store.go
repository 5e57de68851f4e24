// Package selstore persists the user's highlight-color selection as a JSON
// token array in a single file.
package selstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"

	"github.com/DanSleeman/anichart-filter/schema"
)

// Store persists the selection set to disk. Missing or malformed state loads
// as an empty selection; corrupt storage must never break the overlay.
type Store struct {
	path string
	log  pslog.Logger
}

// NewStore constructs a selection store backed by the given file.
func NewStore(path string) (*Store, error) {
	return NewStoreWithLogger(path, nil)
}

// NewStoreWithLogger constructs a selection store with logging.
func NewStoreWithLogger(path string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_file", path)
	}
	return &Store{path: path, log: logger}, nil
}

// Load reads the persisted selection. Unknown tokens are dropped.
func (s *Store) Load() (schema.Selection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("selection load miss")
			}
			return schema.NewSelection(), nil
		}
		if s.log != nil {
			s.log.Warn("selection load failed", "err", err)
		}
		return schema.NewSelection(), err
	}
	var tokens []schema.ColorToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		if s.log != nil {
			s.log.Warn("selection state malformed; starting empty", "err", err)
		}
		return schema.NewSelection(), nil
	}
	sel := schema.NewSelection()
	for _, token := range tokens {
		if token.Known() {
			sel.Set(token, true)
		}
	}
	if s.log != nil {
		s.log.Debug("selection load ok", "tokens", sel.Tokens())
	}
	return sel, nil
}

// Save writes the selection atomically via a temp file rename.
func (s *Store) Save(sel schema.Selection) error {
	data, err := json.MarshalIndent(sel.Tokens(), "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "selection-*.json")
	if err != nil {
		if s.log != nil {
			s.log.Warn("selection save failed", "err", err)
		}
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("selection save failed", "err", err)
		}
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("selection save failed", "err", err)
		}
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("selection save failed", "err", err)
		}
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("selection save failed", "err", err)
		}
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		if s.log != nil {
			s.log.Warn("selection save failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("selection save ok", "tokens", sel.Tokens())
	}
	return nil
}
