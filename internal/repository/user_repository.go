package repository

import (
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) UpdateFCMToken(userID string, token *string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("fcm_token", token).Error
}
