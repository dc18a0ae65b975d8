package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/entity"
)

type mockState int

const (
	stateSuccess mockState = iota
	stateDBError
	stateUserExistsError
	stateUserNotFoundError
)

type usersRepoMock struct {
	state mockState
}

var (
	testUserID   = uuid.New()
	testUserName = "test_user"
	testPassword = "test_password"
)

func testUser() *entity.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	return &entity.User{
		ID:           testUserID,
		Name:         testUserName,
		PasswordHash: string(hash),
	}
}

func (urmock *usersRepoMock) Create(ctx context.Context, user *entity.User) error {
	switch urmock.state {
	case stateUserExistsError:
		return errorvalues.ErrUserExists
	case stateDBError:
		return errors.New("db error")
	default:
		return nil
	}
}

func (urmock *usersRepoMock) FindByName(ctx context.Context, name string) (*entity.User, error) {
	switch urmock.state {
	case stateUserNotFoundError:
		return nil, errorvalues.ErrUserNotFound
	case stateDBError:
		return nil, errors.New("db error")
	default:
		return testUser(), nil
	}
}

func (urmock *usersRepoMock) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	switch urmock.state {
	case stateUserNotFoundError:
		return nil, errorvalues.ErrUserNotFound
	case stateDBError:
		return nil, errors.New("db error")
	default:
		return testUser(), nil
	}
}

func (urmock *usersRepoMock) Delete(ctx context.Context, uid uuid.UUID) error {
	switch urmock.state {
	case stateUserNotFoundError:
		return errorvalues.ErrUserNotFound
	case stateDBError:
		return errors.New("db error")
	default:
		return nil
	}
}

func TestRegister(t *testing.T) {
	mock := &usersRepoMock{state: stateSuccess}
	us := service.NewUserService(mock)
	ctx := context.Background()
	t.Run("registered", func(t *testing.T) {
		user, err := us.Register(ctx, &service.RegisterRequest{
			Name:     testUserName,
			Password: testPassword,
		})
		assert.NoError(t, err)
		assert.Equal(t, testUserName, user.Name)
	})
	t.Run("rejected short password", func(t *testing.T) {
		_, err := us.Register(ctx, &service.RegisterRequest{
			Name:     testUserName,
			Password: "short",
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("rejected name starting with digit", func(t *testing.T) {
		_, err := us.Register(ctx, &service.RegisterRequest{
			Name:     "1user",
			Password: testPassword,
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("existed user", func(t *testing.T) {
		mock.state = stateUserExistsError
		_, err := us.Register(ctx, &service.RegisterRequest{
			Name:     testUserName,
			Password: testPassword,
		})
		assert.ErrorIs(t, err, errorvalues.ErrUserExists)
	})
	t.Run("db error", func(t *testing.T) {
		mock.state = stateDBError
		_, err := us.Register(ctx, &service.RegisterRequest{
			Name:     testUserName,
			Password: testPassword,
		})
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	mock := &usersRepoMock{state: stateSuccess}
	us := service.NewUserService(mock)
	ctx := context.Background()
	t.Run("logged in", func(t *testing.T) {
		user, err := us.Login(ctx, testUserName, testPassword)
		assert.NoError(t, err)
		assert.Equal(t, testUserID, user.ID)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := us.Login(ctx, testUserName, "wrong_password")
		assert.ErrorIs(t, err, errorvalues.ErrWrongCredentials)
	})
	t.Run("unexist user", func(t *testing.T) {
		mock.state = stateUserNotFoundError
		_, err := us.Login(ctx, "unknown", testPassword)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
}

func TestDeleteAccount(t *testing.T) {
	mock := &usersRepoMock{state: stateSuccess}
	us := service.NewUserService(mock)
	ctx := context.Background()
	t.Run("deleted", func(t *testing.T) {
		err := us.DeleteAccount(ctx, testUserID, testPassword)
		assert.NoError(t, err)
	})
	t.Run("wrong password", func(t *testing.T) {
		err := us.DeleteAccount(ctx, testUserID, "wrong_password")
		assert.ErrorIs(t, err, errorvalues.ErrWrongCredentials)
	})
	t.Run("unexist user", func(t *testing.T) {
		mock.state = stateUserNotFoundError
		err := us.DeleteAccount(ctx, testUserID, testPassword)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
}

func TestUserServiceWithoutRepo(t *testing.T) {
	us := service.NewUserService(nil)
	ctx := context.Background()
	_, err := us.Register(ctx, &service.RegisterRequest{Name: testUserName, Password: testPassword})
	assert.ErrorIs(t, err, errorvalues.ErrStoreNotConfigured)
	_, err = us.Login(ctx, testUserName, testPassword)
	assert.ErrorIs(t, err, errorvalues.ErrStoreNotConfigured)
	_, err = us.GetByID(ctx, testUserID)
	assert.ErrorIs(t, err, errorvalues.ErrStoreNotConfigured)
	assert.ErrorIs(t, us.DeleteAccount(ctx, testUserID, testPassword), errorvalues.ErrStoreNotConfigured)
}
