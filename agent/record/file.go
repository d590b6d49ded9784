package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	logx "github.com/tanpawarit/Chative-Voice-Agents/pkg/logger"
)

type fileOptions struct {
	envelope string
	logger   zerolog.Logger
}

type FileOption func(*fileOptions)

// WithEnvelope stores the array under key inside a top-level object, e.g. {"cases": [...]}.
// Sibling keys already in the file survive rewrites.
func WithEnvelope(key string) FileOption {
	return func(o *fileOptions) { o.envelope = key }
}

func WithLogger(l zerolog.Logger) FileOption {
	return func(o *fileOptions) { o.logger = l }
}

// JSONFileStore keeps one domain's records in a single JSON document.
type JSONFileStore[T Identified] struct {
	path string
	opts fileOptions
	mu   sync.Mutex
}

func NewJSONFileStore[T Identified](path string, opts ...FileOption) *JSONFileStore[T] {
	o := fileOptions{logger: logx.For("record")}
	for _, opt := range opts {
		opt(&o)
	}
	return &JSONFileStore[T]{path: path, opts: o}
}

func (s *JSONFileStore[T]) Path() string { return s.path }

func (s *JSONFileStore[T]) Load(context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, _, err := s.read()
	return records, err
}

func (s *JSONFileStore[T]) Append(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, doc, err := s.read()
	if err != nil {
		return err
	}
	if indexOf(records, rec.RecordID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.RecordID())
	}
	records = append(records, rec)
	if err := s.write(records, doc); err != nil {
		return err
	}
	s.opts.logger.Debug().Str("path", s.path).Str("record_id", rec.RecordID()).Int("count", len(records)).Msg("record appended")
	return nil
}

func (s *JSONFileStore[T]) UpdateByID(_ context.Context, id string, mutate func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	records, doc, err := s.read()
	if err != nil {
		return zero, err
	}
	updated, err := applyUpdate(records, id, mutate)
	if err != nil {
		return zero, err
	}
	if err := s.write(records, doc); err != nil {
		return zero, err
	}
	s.opts.logger.Debug().Str("path", s.path).Str("record_id", id).Msg("record updated")
	return updated, nil
}

// read returns the records plus, for enveloped files, the other top-level keys.
func (s *JSONFileStore[T]) read() ([]T, map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil, nil
		}
		return nil, nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var list json.RawMessage = raw
	var doc map[string]json.RawMessage
	if s.opts.envelope != "" {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
		}
		list = doc[s.opts.envelope]
	}

	records := []T{}
	if len(list) > 0 {
		if err := json.Unmarshal(list, &records); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
		}
	}
	return records, doc, nil
}

func (s *JSONFileStore[T]) write(records []T, doc map[string]json.RawMessage) error {
	var (
		out []byte
		err error
	)
	if s.opts.envelope == "" {
		out, err = json.MarshalIndent(records, "", "  ")
	} else {
		list, merr := json.Marshal(records)
		if merr != nil {
			return fmt.Errorf("marshal records: %w", merr)
		}
		if doc == nil {
			doc = map[string]json.RawMessage{}
		}
		doc[s.opts.envelope] = list
		out, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	return writeFileAtomic(s.path, out)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
