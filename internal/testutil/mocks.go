// Package testutil provides shared test utilities, mocks, and fixtures.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/modelodev/scrumbringer/internal/domain"
)

// Common test errors.
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
)

// MockUserRepository implements domain.UserRepository for testing.
type MockUserRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc             func(ctx context.Context, tx *sql.Tx, user *domain.User) error
	GetByEmailFunc         func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFunc            func(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordHashFunc func(ctx context.Context, tx *sql.Tx, email, hash string) (int64, error)

	// In-memory storage for simple tests, keyed by email
	Users map[string]*domain.User
}

// NewMockUserRepository creates a MockUserRepository with initialized maps.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[user.Email]; exists {
		return domain.ErrEmailExists
	}
	m.Users[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, ok := m.Users[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, tx *sql.Tx, email, hash string) (int64, error) {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, tx, email, hash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.Users[email]
	if !ok {
		return 0, nil
	}
	user.PasswordHash = hash
	return 1, nil
}

// MockOrgRepository implements domain.OrgRepository for testing.
type MockOrgRepository struct {
	mu sync.RWMutex

	CreateFunc func(ctx context.Context, tx *sql.Tx, org *domain.Org) error

	Orgs map[string]*domain.Org
}

// NewMockOrgRepository creates a MockOrgRepository with initialized maps.
func NewMockOrgRepository() *MockOrgRepository {
	return &MockOrgRepository{Orgs: make(map[string]*domain.Org)}
}

func (m *MockOrgRepository) Create(ctx context.Context, tx *sql.Tx, org *domain.Org) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, org)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Orgs[org.ID] = org
	return nil
}

// MockResetTokenRepository implements domain.ResetTokenRepository for
// testing. The in-memory path honors the state machine: GetForUpdate on an
// unknown token fails, MarkUsed affects zero rows unless Active.
type MockResetTokenRepository struct {
	mu sync.Mutex

	InsertFunc           func(ctx context.Context, tx *sql.Tx, token *domain.ResetToken) error
	InvalidateActiveFunc func(ctx context.Context, tx *sql.Tx, email string) error
	GetForUpdateFunc     func(ctx context.Context, tx *sql.Tx, token string) (*domain.ResetToken, error)
	GetByTokenFunc       func(ctx context.Context, token string) (*domain.ResetToken, error)
	MarkUsedFunc         func(ctx context.Context, tx *sql.Tx, token string) (int64, error)

	Tokens map[string]*domain.ResetToken
}

// NewMockResetTokenRepository creates a MockResetTokenRepository with
// initialized maps.
func NewMockResetTokenRepository() *MockResetTokenRepository {
	return &MockResetTokenRepository{Tokens: make(map[string]*domain.ResetToken)}
}

func (m *MockResetTokenRepository) Insert(ctx context.Context, tx *sql.Tx, token *domain.ResetToken) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Tokens[token.Token] = token
	return nil
}

func (m *MockResetTokenRepository) InvalidateActive(ctx context.Context, tx *sql.Tx, email string) error {
	if m.InvalidateActiveFunc != nil {
		return m.InvalidateActiveFunc(ctx, tx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.Tokens {
		if t.Email == email && t.Status == domain.ResetTokenActive {
			t.Status = domain.ResetTokenInvalid
		}
	}
	return nil
}

func (m *MockResetTokenRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, token string) (*domain.ResetToken, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, token)
	}
	return m.GetByToken(ctx, token)
}

func (m *MockResetTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.Tokens[token]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrResetTokenInvalid
}

func (m *MockResetTokenRepository) MarkUsed(ctx context.Context, tx *sql.Tx, token string) (int64, error) {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, tx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tokens[token]
	if !ok || t.Status != domain.ResetTokenActive {
		return 0, nil
	}
	t.Status = domain.ResetTokenUsed
	return 1, nil
}

// MockTxRunner implements domain.TxRunner without a database. The nil
// transaction is fine for mocks that ignore it.
type MockTxRunner struct {
	// WithTxFunc overrides the default passthrough.
	WithTxFunc func(ctx context.Context, fn func(*sql.Tx) error) error
	// BeginErr, when set, is returned without invoking fn.
	BeginErr error
}

func (m *MockTxRunner) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(nil)
}

// MockResetNotifier records published reset events.
type MockResetNotifier struct {
	mu sync.Mutex

	PublishFunc func(ctx context.Context, email, token, urlPath string) error

	Published []string // emails in publish order
}

func (m *MockResetNotifier) PublishResetRequested(ctx context.Context, email, token, urlPath string) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, email, token, urlPath)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Published = append(m.Published, email)
	return nil
}
