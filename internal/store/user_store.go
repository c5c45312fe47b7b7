package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskflow/internal/model"
)

const userColumns = "id, name, email, password, profile_image_url, role, created_at, updated_at"

// CreateUser inserts a new user. Generates a UUID if ID is empty.
func (s *SQLStore) CreateUser(ctx context.Context, user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	if user.Email == "" {
		return fmt.Errorf("user email must not be empty")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = model.RoleMember
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.Name, user.Email, user.Password, user.ProfileImageURL,
		string(user.Role), user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Conflictf("User already exists")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// SaveUser updates an existing user by ID.
func (s *SQLStore) SaveUser(ctx context.Context, user model.User) error {
	user.Email = model.NormalizeEmail(user.Email)

	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE users SET
			name = ?, email = ?, password = ?, profile_image_url = ?,
			role = ?, updated_at = ?
		WHERE id = ?`),
		user.Name, user.Email, user.Password, user.ProfileImageURL,
		string(user.Role), user.UpdatedAt.UTC(),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Conflictf("Email is already in use")
		}
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return model.NotFoundf("User not found")
	}
	return nil
}

// GetUserByID retrieves a single user by ID.
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a single user by normalized email.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email", model.NormalizeEmail(email))
}

func (s *SQLStore) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		s.db.Rebind("SELECT "+userColumns+" FROM users WHERE "+column+" = ?"), value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return &user, nil
}

// GetUsers retrieves users matching the filter, oldest first.
func (s *SQLStore) GetUsers(ctx context.Context, filter UserFilter) ([]model.User, error) {
	var conditions []string
	var args []any
	if filter.Role != nil {
		conditions = append(conditions, "role = ?")
		args = append(args, string(*filter.Role))
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// GetUsersByIDs retrieves the users whose IDs appear in ids.
func (s *SQLStore) GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	query, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying users by id: %w", err)
	}
	return users, nil
}
