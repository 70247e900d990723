package storage

import (
	"context"
	"sync"

	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
)

// MemoryReceiptStore keeps receipts in process memory. Used in development
// when no bucket is configured, and in tests.
type MemoryReceiptStore struct {
	// BaseURL prefixes returned receipt URLs
	BaseURL string
	MaxSize int64

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryReceiptStore creates a new MemoryReceiptStore
func NewMemoryReceiptStore(baseURL string) *MemoryReceiptStore {
	if baseURL == "" {
		baseURL = "http://localhost:8080/receipts-dev"
	}
	return &MemoryReceiptStore{
		BaseURL: baseURL,
		MaxSize: DefaultMaxReceiptSize,
		objects: make(map[string][]byte),
	}
}

// Ensure MemoryReceiptStore implements BlobStore
var _ financeapp.BlobStore = (*MemoryReceiptStore)(nil)

// Store keeps a copy of the file
func (s *MemoryReceiptStore) Store(_ context.Context, file financeapp.ReceiptUpload) (finance.Receipt, error) {
	key, _, err := prepareReceipt(file, s.MaxSize)
	if err != nil {
		return finance.Receipt{}, err
	}
	data := make([]byte, len(file.Data))
	copy(data, file.Data)

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return finance.Receipt{URL: joinURL(s.BaseURL, key), PublicID: key}, nil
}

// Delete removes a stored file
func (s *MemoryReceiptStore) Delete(_ context.Context, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[identifier]; !ok {
		return false, nil
	}
	delete(s.objects, identifier)
	return true, nil
}

// Exists reports whether identifier is stored
func (s *MemoryReceiptStore) Exists(identifier string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[identifier]
	return ok
}

// Len returns the number of stored receipts
func (s *MemoryReceiptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
