package repository

import (
	"context"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/internal/utils"

	"gorm.io/gorm"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.UserEntity, error)
	GetUserByUsername(ctx context.Context, username string, opts ...utils.DBOption) (*models.UserEntity, error)
	CreateUser(ctx context.Context, user *models.UserEntity, opts ...utils.DBOption) error
	DeleteUser(ctx context.Context, id uint, opts ...utils.DBOption) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetUserByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.UserEntity, error) {
	var user models.UserEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id = ?", id).First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string, opts ...utils.DBOption) (*models.UserEntity, error) {
	var user models.UserEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.UserEntity, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(user).Error
}

// DeleteUser removes the user. Command runs keep existing with a null runner.
func (r *userRepository) DeleteUser(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CommandRunEntity{}).
			Where("runner_id = ?", id).
			Update("runner_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UserEntity{}, id).Error
	})
}
