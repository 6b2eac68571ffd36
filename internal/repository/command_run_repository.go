package repository

import (
	"context"
	"errors"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/internal/utils"

	"gorm.io/gorm"
)

var ErrCommandRunNotFound = errors.New("command run not found")

type CommandRunRepository interface {
	Create(ctx context.Context, run *models.CommandRunEntity, opts ...utils.DBOption) error
	Update(ctx context.Context, run *models.CommandRunEntity, opts ...utils.DBOption) error
	Get(ctx context.Context, id uint, opts ...utils.DBOption) (*models.CommandRunEntity, error)
	List(ctx context.Context, param models.CommandRunQueryParam, opts ...utils.DBOption) ([]models.CommandRunEntity, error)
}

type commandRunRepository struct {
	db *gorm.DB
}

func NewCommandRunRepository(db *gorm.DB) CommandRunRepository {
	return &commandRunRepository{db: db}
}

func (r *commandRunRepository) Create(ctx context.Context, run *models.CommandRunEntity, opts ...utils.DBOption) error {
	if run.ID != 0 {
		return errors.New("command run already persisted")
	}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Omit("Runner").Create(run).Error
}

// Update writes the mutable columns of an already persisted run. Command,
// captured output, outcome and timestamps are never rewritten.
func (r *commandRunRepository) Update(ctx context.Context, run *models.CommandRunEntity, opts ...utils.DBOption) error {
	if run.ID == 0 {
		return errors.New("command run has not been persisted")
	}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Model(&models.CommandRunEntity{ID: run.ID}).
		Updates(map[string]interface{}{
			"runner_id":  run.RunnerID,
			"updated_at": utils.TimeNowUTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommandRunNotFound
	}
	return nil
}

func (r *commandRunRepository) Get(ctx context.Context, id uint, opts ...utils.DBOption) (*models.CommandRunEntity, error) {
	var run models.CommandRunEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id = ?", id).First(&run)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCommandRunNotFound
		}
		return nil, result.Error
	}
	return &run, nil
}

func (r *commandRunRepository) List(ctx context.Context, param models.CommandRunQueryParam, opts ...utils.DBOption) ([]models.CommandRunEntity, error) {
	var runs []models.CommandRunEntity
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	db = db.Model(&models.CommandRunEntity{})

	if param.RunnerID != nil {
		db = db.Where("runner_id = ?", *param.RunnerID)
	}
	if param.Status != "" {
		db = db.Where("status = ?", param.Status)
	}
	if param.Limit > 0 {
		db = db.Limit(param.Limit)
	}
	if param.Offset > 0 {
		db = db.Offset(param.Offset)
	}

	if err := db.Order("executed_at DESC").Order("id DESC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
