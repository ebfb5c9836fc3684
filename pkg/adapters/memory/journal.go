package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/machine/pkg/domain"
)

// Journal implements ports.Journal in memory.
// Safe for concurrent use.
type Journal struct {
	data map[string]domain.Record
	mu   sync.RWMutex
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{
		data: make(map[string]domain.Record),
	}
}

// Record stores the record, replacing any record with the same ID.
func (j *Journal) Record(ctx context.Context, rec domain.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data[rec.ID] = rec
	return nil
}

// Get retrieves a record by execution ID.
func (j *Journal) Get(ctx context.Context, id string) (domain.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rec, ok := j.data[id]
	if !ok {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// List returns the recorded execution IDs, oldest first.
func (j *Journal) List(ctx context.Context) ([]string, error) {
	j.mu.RLock()
	records := make([]domain.Record, 0, len(j.data))
	for _, rec := range j.data {
		records = append(records, rec)
	}
	j.mu.RUnlock()

	sort.Slice(records, func(a, b int) bool {
		if records[a].StartedAt.Equal(records[b].StartedAt) {
			return records[a].ID < records[b].ID
		}
		return records[a].StartedAt.Before(records[b].StartedAt)
	})

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids, nil
}

// Delete removes a record.
func (j *Journal) Delete(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.data, id)
	return nil
}
