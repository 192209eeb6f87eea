package account

import (
	"errors"
	"strings"

	"photos/internal/models"
	"photos/internal/store"

	"go.uber.org/zap"
)

// Reserved usernames. "admin" is the administrative role and is never
// stored; "stock" is a regular account auto-populated on first login.
const (
	AdminUser = "admin"
	StockUser = "stock"
)

var (
	ErrUnknownUser   = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrReservedUser  = errors.New("username is reserved")
)

// IsReserved reports whether the username is one of the reserved
// accounts, case-insensitively.
func IsReserved(username string) bool {
	return strings.EqualFold(username, AdminUser) || strings.EqualFold(username, StockUser)
}

// Manager is the admin view over the set of persisted users, plus the
// login path shared by every account.
type Manager struct {
	store   *store.Store
	seedDir string
	log     *zap.Logger
}

func NewManager(st *store.Store, seedDir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: st, seedDir: seedDir, log: log}
}

// ListUsers loads every stored user through the store. Blobs the store
// reports as unreadable are skipped; they are already logged there.
func (m *Manager) ListUsers() ([]*models.User, error) {
	keys, err := m.store.List()
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(keys))
	for _, key := range keys {
		u, err := m.store.Load(key)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

// CreateUser creates and persists an empty regular user. Reserved names
// and names already in use are rejected alike.
func (m *Manager) CreateUser(username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.ErrEmptyName
	}
	if IsReserved(username) {
		return nil, ErrDuplicateUser
	}
	exists, err := m.store.Exists(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}
	u := models.NewUser(username)
	if err := m.store.Save(u); err != nil {
		return nil, err
	}
	m.log.Info("user created", zap.String("username", username))
	return u, nil
}

// DeleteUser removes the stored blob for a regular user. The admin and
// stock accounts cannot be deleted.
func (m *Manager) DeleteUser(username string) error {
	if IsReserved(username) {
		return ErrReservedUser
	}
	exists, err := m.store.Exists(username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownUser
	}
	if err := m.store.Delete(username); err != nil {
		return err
	}
	m.log.Info("user deleted", zap.String("username", username))
	return nil
}

// Login resolves a username to its user record. The admin account is
// recognized by name and synthesized, never stored. The stock account
// is loaded or created and its stock album seeded before returning.
// Regular users must already exist.
func (m *Manager) Login(username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.ErrEmptyName
	}

	if strings.EqualFold(username, AdminUser) {
		u := models.NewUser(AdminUser)
		u.Role = models.RoleAdmin
		return u, nil
	}

	if strings.EqualFold(username, StockUser) {
		u, err := m.store.Load(StockUser)
		if err != nil {
			return nil, err
		}
		if u == nil {
			u = models.NewUser(StockUser)
		}
		if err := m.seedStock(u); err != nil {
			return nil, err
		}
		if err := m.store.Save(u); err != nil {
			return nil, err
		}
		return u, nil
	}

	u, err := m.store.Load(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnknownUser
	}
	return u, nil
}
