package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shop-platform/internal/entity"
)

// OrderLog archives finalized payment attempts, one JSON file per record.
// Files are never rewritten; each write targets a uniquely named file, so
// concurrent finalizations do not contend.
type OrderLog struct {
	dir string
}

func NewOrderLog(dir string) (*OrderLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create orders dir: %w", err)
	}
	return &OrderLog{dir: dir}, nil
}

// Append writes the record and returns the file name it was stored under.
func (l *OrderLog) Append(record *entity.OrderRecord) (string, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	ts := record.CreatedAt.UTC().Format(time.RFC3339Nano)
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	name := fmt.Sprintf("%s-%s.json", record.Type, ts)
	path := filepath.Join(l.dir, name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write order record: %w", err)
	}

	return name, nil
}

// Read loads a single record back by file name.
func (l *OrderLog) Read(name string) (*entity.OrderRecord, error) {
	if strings.Contains(name, string(os.PathSeparator)) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid record name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}

	record := &entity.OrderRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, err
	}

	return record, nil
}

// List returns all archived records, oldest first.
func (l *OrderLog) List() ([]*entity.OrderRecord, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	var records []*entity.OrderRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := l.Read(entry.Name())
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}
