package keyring

// MockStore is a MemoryStore whose operations can be made to fail, for
// exercising keyring error paths in tests.
type MockStore struct {
	*MemoryStore
	getErr error
	setErr error
	delErr error
}

// NewMockStore creates an empty mock keyring store.
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: NewMemoryStore()}
}

func (m *MockStore) Get(service, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.MemoryStore.Get(service, key)
}

func (m *MockStore) Set(service, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	return m.MemoryStore.Set(service, key, value)
}

func (m *MockStore) Delete(service, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	return m.MemoryStore.Delete(service, key)
}

// WithGetError configures the mock to return an error on Get calls.
func (m *MockStore) WithGetError(err error) *MockStore {
	m.getErr = err
	return m
}

// WithSetError configures the mock to return an error on Set calls.
func (m *MockStore) WithSetError(err error) *MockStore {
	m.setErr = err
	return m
}

// WithDeleteError configures the mock to return an error on Delete calls.
func (m *MockStore) WithDeleteError(err error) *MockStore {
	m.delErr = err
	return m
}

// WithCredentials pre-populates the store with c.
func (m *MockStore) WithCredentials(c Credentials) *MockStore {
	_ = SaveCredentials(m.MemoryStore, c)
	return m
}
