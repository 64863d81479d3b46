package services

import (
	"anongram/contract"
	"anongram/domain"

	"github.com/samber/lo"
)

type IUserService interface {
	Profiles() ([]domain.Profile, error)
}

type UserService struct {
	directory contract.UserDirectory
}

func NewUserService(directory contract.UserDirectory) *UserService {
	return &UserService{directory: directory}
}

// Profiles lists the directory through the safe projection: emails never
// leave the repository layer.
func (s *UserService) Profiles() ([]domain.Profile, error) {
	users, err := s.directory.List()
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(user domain.User, _ int) domain.Profile {
		return user.Profile()
	}), nil
}
