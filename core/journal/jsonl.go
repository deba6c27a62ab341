package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation bounds a JSONL journal. The zero value keeps a single growing file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (r Rotation) enabled() bool { return r.MaxSizeMB > 0 }

// JSONLStore appends one JSON object per line. With rotation the file is
// handed to lumberjack and queries also read the rotated backups.
type JSONLStore struct {
	mu     sync.Mutex
	path   string
	rotate bool
	w      io.WriteCloser
}

func NewJSONLStore(path string, rot Rotation) (*JSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	s := &JSONLStore{path: path, rotate: rot.enabled()}
	if s.rotate {
		s.w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAgeDays,
		}
		return s, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	s.w = f
	return s, nil
}

func (s *JSONLStore) Append(ctx context.Context, rec LogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(line, '\n'))
	return err
}

func (s *JSONLStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	var res []LogRecord
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res, err = scanRecords(f, q, res)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(res, func(a, b LogRecord) int { return a.Timestamp.Compare(b.Timestamp) })
	return q.latest(res), nil
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}

// files lists the live journal and, when rotating, its backups.
func (s *JSONLStore) files() ([]string, error) {
	if !s.rotate {
		return []string{s.path}, nil
	}
	ext := filepath.Ext(s.path)
	return filepath.Glob(strings.TrimSuffix(s.path, ext) + "*" + ext)
}

// scanRecords appends to res every decodable line of r matching q.
// Malformed lines are skipped.
func scanRecords(r io.Reader, q LogQuery, res []LogRecord) ([]LogRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec LogRecord
		if json.Unmarshal(sc.Bytes(), &rec) != nil {
			continue
		}
		if q.Match(rec) {
			res = append(res, rec)
		}
	}
	return res, sc.Err()
}
