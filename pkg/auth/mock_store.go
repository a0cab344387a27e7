package auth

import "sync"

// MockStore is an in-memory CredentialStore used in tests
type MockStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	failAll  bool
}

// NewMockStore creates a new in-memory credential store
func NewMockStore() *MockStore {
	return &MockStore{
		accounts: make(map[string]*Account),
	}
}

// SetFailing makes every operation return ErrStoreUnavailable
func (m *MockStore) SetFailing(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

// Store saves credentials in memory
func (m *MockStore) Store(account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return ErrStoreUnavailable
	}
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	copy := *account
	m.accounts[account.Username] = &copy
	return nil
}

// Retrieve gets credentials from memory
func (m *MockStore) Retrieve(username string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failAll {
		return nil, ErrStoreUnavailable
	}

	account, ok := m.accounts[username]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	copy := *account
	return &copy, nil
}

// List returns all stored accounts
func (m *MockStore) List() ([]*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failAll {
		return nil, ErrStoreUnavailable
	}

	var accounts []*Account
	for _, account := range m.accounts {
		copy := *account
		accounts = append(accounts, &copy)
	}
	return accounts, nil
}

// Delete removes credentials from memory
func (m *MockStore) Delete(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return ErrStoreUnavailable
	}
	if _, ok := m.accounts[username]; !ok {
		return ErrCredentialsNotFound
	}

	delete(m.accounts, username)
	return nil
}

// Exists checks if credentials exist in memory
func (m *MockStore) Exists(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.accounts[username]
	return ok
}
