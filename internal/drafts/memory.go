package drafts

import "context"

// memoryBlobs keeps drafts in memory, making it useful for testing.
type memoryBlobs struct {
	data map[string][]byte
}

// NewMemoryStore creates a draft store that keeps drafts in memory.
func NewMemoryStore() *Store {
	return newStore(&memoryBlobs{data: make(map[string][]byte)})
}

func (m *memoryBlobs) Put(_ context.Context, key string, data []byte) error {
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, errBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryBlobs) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}
