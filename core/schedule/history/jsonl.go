package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
)

// JSONLStore stores transitions in a JSONL file.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(ctx context.Context, t Transition) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *JSONLStore) Query(ctx context.Context, q Query) ([]Transition, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []Transition
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var t Transition
		if err := json.Unmarshal(scanner.Bytes(), &t); err != nil {
			continue
		}
		if q.Matches(t) {
			res = append(res, t)
		}
	}
	return res, scanner.Err()
}

func (s *JSONLStore) Close() error { return nil }
