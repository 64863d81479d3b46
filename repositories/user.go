package repositories

import (
	"anongram/domain"
	"anongram/errors"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	FindByEmail(email string) (domain.User, error)
	Create(email string) (domain.User, error)
	List() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

// Create persists a new user with default fields: the username is derived
// from the local part of the email, the status starts as "online".
// Creating an email that already exists returns ErrUserAlreadyExists.
func (u UserRepository) Create(email string) (domain.User, error) {
	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  strings.SplitN(email, "@", 2)[0],
		Status:    "online",
		About:     "",
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return domain.User{}, err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte("user:" + email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// FindByEmail retrieves a user, mapping a missing key to ErrUserNotFound.
func (u UserRepository) FindByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// List returns every user in the directory, in key (email) order.
func (u UserRepository) List() ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user domain.User
				if err := json.Unmarshal(val, &user); err != nil {
					return err
				}
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}
