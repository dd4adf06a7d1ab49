package mock

import (
	"context"
	"fmt"

	"github.com/americare/flourish/pkg/models"
	"github.com/americare/flourish/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo *mockUserRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo: &mockUserRepo{},
	}
}

type mockUserRepo struct {
	Stored    *models.User
	CreateErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if m.Stored != nil && m.Stored.Email == u.Email {
		return 0, fmt.Errorf("user email %q: %w", u.Email, repository.ErrDuplicate)
	}
	role := u.Role
	if role == "" {
		role = models.RoleEmployee
	}
	m.Stored = &models.User{ID: 1, Email: u.Email, FullName: u.FullName, Role: role, PasswordHash: u.PasswordHash}
	return 1, nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.Stored == nil {
		return nil, nil
	}
	return []models.User{*m.Stored}, nil
}

func (m *mockUserRepo) UpdateUserRole(ctx context.Context, id int64, role string) error {
	if m.Stored != nil && m.Stored.ID == id {
		m.Stored.Role = role
	}
	return nil
}

func (m *mockUserRepo) SetUserSurveyCompleted(ctx context.Context, id int64, completed bool) error {
	if m.Stored != nil && m.Stored.ID == id {
		m.Stored.IsSurveyCompleted = completed
	}
	return nil
}
