package kv

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// JSONLFileName is the file the JSONL backend keeps in its data directory.
const JSONLFileName = "kv.jsonl"

var _ types.KV = (*JSONL)(nil)

// JSONL keeps the whole namespace in memory and rewrites one JSONL file on
// every mutation using the temp-file, fsync, rename pattern, so the file on
// disk is always a complete snapshot.
type JSONL struct {
	mu     sync.RWMutex
	path   string
	closed bool
	data   map[string][]byte
}

// kvRecordJSON is one line of kv.jsonl. UTF-8 values are stored as text so
// the file stays readable; anything else goes to value_b64.
type kvRecordJSON struct {
	Key      string  `json:"key"`
	Value    *string `json:"value,omitempty"`
	ValueB64 *string `json:"value_b64,omitempty"`
}

// OpenJSONL loads dataDir/kv.jsonl, creating dataDir when needed. A missing
// file starts an empty namespace. Malformed lines are skipped.
func OpenJSONL(dataDir string) (*JSONL, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	s := &JSONL{
		path: filepath.Join(dataDir, JSONLFileName),
		data: make(map[string][]byte),
	}

	records, err := readJSONL(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, raw := range records {
		var rec kvRecordJSON
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Key == "" {
			continue
		}
		switch {
		case rec.Value != nil:
			s.data[rec.Key] = []byte(*rec.Value)
		case rec.ValueB64 != nil:
			b, err := base64.StdEncoding.DecodeString(*rec.ValueB64)
			if err != nil {
				continue
			}
			s.data[rec.Key] = b
		}
	}
	return s, nil
}

// Path returns the JSONL file location.
func (s *JSONL) Path() string {
	return s.path
}

// Get returns a copy of the value stored under key.
func (s *JSONL) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, types.ErrKeyNotFound
	}
	return cloneBytes(v), nil
}

// Set stores value and rewrites the file. On write failure the in-memory
// namespace is rolled back.
func (s *JSONL) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrClosed
	}
	prev, had := s.data[key]
	s.data[key] = cloneBytes(value)
	if err := s.persistLocked(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the file when the key existed.
func (s *JSONL) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrClosed
	}
	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.persistLocked(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// Keys returns the sorted keys that start with prefix.
func (s *JSONL) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrClosed
	}
	return sortedKeys(s.data, prefix), nil
}

// Close marks the store closed. The file already reflects every write.
func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}

// persistLocked writes the namespace in key order. The caller must hold s.mu.
func (s *JSONL) persistLocked() error {
	keys := sortedKeys(s.data, "")
	records := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		v := s.data[k]
		rec := kvRecordJSON{Key: k}
		if utf8.Valid(v) {
			text := string(v)
			rec.Value = &text
		} else {
			enc := base64.StdEncoding.EncodeToString(v)
			rec.ValueB64 = &enc
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record %q: %w", k, err)
		}
		records = append(records, b)
	}
	return writeJSONL(s.path, records)
}

// readJSONL returns the parseable lines of the namespace file. Blank and
// malformed lines are skipped; each kept line is copied out of the scanner
// buffer.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening kv file: %w", err)
	}
	defer f.Close()

	var lines []json.RawMessage
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for sc.Scan() {
		if line := sc.Bytes(); len(line) > 0 && json.Valid(line) {
			lines = append(lines, append(json.RawMessage(nil), line...))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading kv file %s: %w", path, err)
	}
	return lines, nil
}

// maxRecordSize bounds one key/value line. A cake's picks easily fit.
const maxRecordSize = 16 << 20

// writeJSONL replaces the namespace file with records, one per line. The
// data goes to a temp file in the same directory which is synced and then
// renamed over path, so readers see either the old or the new snapshot.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+JSONLFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating kv temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		w.Write(rec)
		w.WriteByte('\n')
	}
	// bufio.Writer keeps the first write error and reports it from Flush.
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing kv snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing kv snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing kv snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing kv file: %w", err)
	}
	return nil
}
