package model

import (
	"strings"
	"time"
)

// Role determines what an authenticated user may do.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is an account that can sign in and be assigned tasks.
type User struct {
	ID    string `json:"_id" db:"id" bson:"_id"`
	Name  string `json:"name" db:"name" bson:"name"`
	Email string `json:"email" db:"email" bson:"email"`

	// Password is the bcrypt hash. It is never serialized to clients.
	Password string `json:"-" db:"password" bson:"password"`

	ProfileImageURL *string   `json:"profileImageUrl" db:"profile_image_url" bson:"profileImageUrl"`
	Role            Role      `json:"role" db:"role" bson:"role"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// Summary returns the public subset of the user shown next to tasks.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// UserSummary is the expanded form of a task assignee.
type UserSummary struct {
	ID              string  `json:"_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// NormalizeEmail trims and lowercases an email address. All lookups and
// writes go through it so that uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor is the verified identity making a request.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Actor returns the actor descriptor for the user.
func (u User) Actor() Actor { return Actor{ID: u.ID, Role: u.Role} }
