package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Parse decodes YAML strictly: unknown fields fail immediately
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and validates a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Hash generates SHA256 hash from Config (canonical JSON)
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Store holds the live parameter set and persists edits back to the YAML file.
// ⭐ SSOT: 전략 파라미터 수정은 여기서만
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  *Config
}

// Open loads the file at path into a Store
func Open(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy config %s: %w", path, err)
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Snapshot returns a deep copy of the current config and its hash
func (s *Store) Snapshot() (*Config, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := clone(s.cfg)
	hash, err := Hash(cp)
	return cp, hash, err
}

// Strategy returns a copy of one strategy
func (s *Store) Strategy(id string) (Strategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.cfg.Find(id)
	if !ok {
		return Strategy{}, false
	}
	return clone(&Config{Strategies: []Strategy{*st}}).Strategies[0], true
}

// UpdateParams replaces parameter values for a strategy.
// Bounds are kept from the file; only existing parameters may be edited.
func (s *Store) UpdateParams(id string, values map[string]float64) (Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.cfg)
	st, ok := next.Find(id)
	if !ok {
		return Strategy{}, fmt.Errorf("strategy %q not found", id)
	}

	for name, v := range values {
		p, exists := st.Params[name]
		if !exists {
			return Strategy{}, ValidationError{"params." + name, "unknown parameter"}
		}
		p.Value = v
		if err := ValidateParam(p); err != nil {
			return Strategy{}, ValidationError{"params." + name, err.Error()}
		}
		st.Params[name] = p
	}

	if err := Validate(next); err != nil {
		return Strategy{}, err
	}
	if err := s.write(next); err != nil {
		return Strategy{}, err
	}

	s.cfg = next
	return *st, nil
}

// write replaces the file atomically via rename
func (s *Store) write(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal strategy config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".strategies-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}

func clone(cfg *Config) *Config {
	out := &Config{
		Version:    cfg.Version,
		Strategies: make([]Strategy, len(cfg.Strategies)),
	}
	for i, st := range cfg.Strategies {
		params := make(map[string]Param, len(st.Params))
		for k, v := range st.Params {
			params[k] = v
		}
		st.Params = params
		out.Strategies[i] = st
	}
	return out
}
