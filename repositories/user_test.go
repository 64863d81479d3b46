package repositories

import (
	"anongram/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Create_And_Find_By_Email(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	created, err := repository.Create("user1@test.com")
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.Equal("user1", created.Username)
	req.Equal("online", created.Status)

	found, err := repository.FindByEmail("user1@test.com")
	req.NoError(err)
	req.Equal(created, found)
}

func Test_Find_Unknown_Email_Returns_ErrUserNotFound(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.FindByEmail("ghost@test.com")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_Duplicate_Email_Is_Rejected(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.Create("user1@test.com")
	req.NoError(err)
	_, err = repository.Create("user1@test.com")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_List_Returns_Every_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	emails := []string{"a@test.com", "b@test.com", "c@test.com"}
	for _, email := range emails {
		_, err := repository.Create(email)
		req.NoError(err)
	}

	users, err := repository.List()
	req.NoError(err)
	req.Len(users, len(emails))
}
