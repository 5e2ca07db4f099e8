package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	Customer UserRole = "Customer"
	Admin    UserRole = "Admin"
	Seller   UserRole = "Seller"
)

func (r UserRole) Valid() bool {
	return r == Customer || r == Admin || r == Seller
}

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	Address      Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	NextID() (uuid.UUID, error)
	Create(user *User) error
	Update(user *User) error
	Find(id uuid.UUID) (*User, error)
	FindByUsername(username string) (*User, error)
}

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Check(hashedPassword, plainTextPassword string) (bool, error)
}
