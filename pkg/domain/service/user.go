package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
)

const minPasswordLength = 8

type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	Role     model.UserRole
	Address  model.Address
}

// ProfileChanges holds a partial profile update. Nil fields are left untouched.
type ProfileChanges struct {
	Email   *string
	Address *model.Address
}

type UserService interface {
	RegisterUser(input RegisterUserInput) (*model.User, error)
	AuthenticateUser(username, password string) (*model.User, error)
	GetUserProfile(userID uuid.UUID) (*model.User, error)
	UpdateUserProfile(userID uuid.UUID, changes ProfileChanges) (*model.User, error)
}

func NewUserService(repo model.UserRepository, passManager model.PasswordManager, dispatcher EventDispatcher) UserService {
	return &userService{
		repo:        repo,
		passManager: passManager,
		dispatcher:  dispatcher,
	}
}

type userService struct {
	// registration serialises the username uniqueness check with the insert.
	registration sync.Mutex
	repo         model.UserRepository
	passManager  model.PasswordManager
	dispatcher   EventDispatcher
}

func (s *userService) RegisterUser(input RegisterUserInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	}
	if !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("%w: email %q is not valid", model.ErrInvalidInput, input.Email)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidInput, minPasswordLength)
	}
	role := input.Role
	if role == "" {
		role = model.Customer
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
	}

	hashedPassword, err := s.passManager.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	s.registration.Lock()
	defer s.registration.Unlock()

	if _, err := s.repo.FindByUsername(username); err == nil {
		return nil, fmt.Errorf("%w: username %q is taken", model.ErrDuplicate, username)
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	userID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           userID,
		Username:     username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Address:      input.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserRegistered{
		UserID:   userID,
		Username: username,
		Email:    input.Email,
	})
	return user, nil
}

func (s *userService) AuthenticateUser(username, password string) (*model.User, error) {
	user, err := s.repo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	ok, err := s.passManager.Check(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUserProfile(userID uuid.UUID) (*model.User, error) {
	return s.repo.Find(userID)
}

func (s *userService) UpdateUserProfile(userID uuid.UUID, changes ProfileChanges) (*model.User, error) {
	user, err := s.repo.Find(userID)
	if err != nil {
		return nil, err
	}

	if changes.Email != nil {
		if !strings.Contains(*changes.Email, "@") {
			return nil, fmt.Errorf("%w: email %q is not valid", model.ErrInvalidInput, *changes.Email)
		}
		user.Email = *changes.Email
	}
	if changes.Address != nil {
		user.Address = *changes.Address
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserProfileUpdated{UserID: userID})
	return user, nil
}
