package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocSearch/internal/domain/jobModel"
)

type InMemoryMetadataStore struct {
	lock    *sync.RWMutex
	records map[string]jobModel.MetadataRecord
}

func InitInMemoryMetadataStore() *InMemoryMetadataStore {
	return &InMemoryMetadataStore{
		lock:    new(sync.RWMutex),
		records: make(map[string]jobModel.MetadataRecord),
	}
}

func (store *InMemoryMetadataStore) SaveRecord(ctx context.Context, record jobModel.MetadataRecord) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.records[record.DocumentId] = record
	return nil
}

func (store *InMemoryMetadataStore) GetRecord(ctx context.Context, documentId string) (jobModel.MetadataRecord, bool) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	r, ok := store.records[documentId]
	return r, ok
}
