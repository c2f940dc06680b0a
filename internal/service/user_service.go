package service

import (
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"github.com/ColaboAI/WeGoGym-api/internal/repository"
)

type UserService struct {
	userRepo  repository.UserRepositoryInterface
	blockRepo repository.UserBlockRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface, blockRepo repository.UserBlockRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo, blockRepo: blockRepo}
}

func (s *UserService) GetUser(userID string) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

// RegisterFCMToken stores the device push token; an empty token clears it.
func (s *UserService) RegisterFCMToken(userID, token string) error {
	if token == "" {
		return s.userRepo.UpdateFCMToken(userID, nil)
	}
	return s.userRepo.UpdateFCMToken(userID, &token)
}

func (s *UserService) BlockUser(userID, blockedUserID string) error {
	return s.blockRepo.Block(userID, blockedUserID)
}

func (s *UserService) UnblockUser(userID, blockedUserID string) error {
	return s.blockRepo.Unblock(userID, blockedUserID)
}
