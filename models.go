package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role for registered accounts
	RoleUser UserRole = "user"
	// RoleAdmin is an administrative role
	RoleAdmin UserRole = "admin"
)

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role UserRole) bool {
	return role == RoleUser || role == RoleAdmin
}

// User is the user model. Password stages a plaintext password for the next
// write; the pre-write pipeline hashes it into PasswordHash inside the write
// transaction and the staged value is never persisted or serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"role,notnull" json:"role,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	Password      string     `bun:"-" json:"-"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// FullName joins first and last name for the token name claim
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// Identity returns the hash-free projection attached to verified requests
func (u *User) Identity() Identity {
	return &userIdentity{
		id:    u.ID.String(),
		email: u.Email,
		role:  u.Role,
	}
}

type userIdentity struct {
	id    string
	email string
	role  string
}

func (i *userIdentity) ID() string    { return i.id }
func (i *userIdentity) Email() string { return i.email }
func (i *userIdentity) Role() string  { return i.role }
