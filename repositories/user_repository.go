package repositories

import (
	"sms-backend/models"

	"gorm.io/gorm"
)

// UserRepository interface defines User-related database operations
type UserRepository interface {
	Create(user *models.User) error
	FindByUsername(username string) (*models.User, error)
}

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new User
func (r *userRepository) Create(user *models.User) error {
	result := r.db.Create(user)
	return result.Error
}

// FindByUsername finds User by Username
func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	result := r.db.Where("username = ?", username).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}
