package repository

import (
	"golang-admin-command-runner/internal/utils"

	"gorm.io/gorm"
)

// UnitOfWork runs fn inside one database transaction; repositories join it
// through the options passed to fn.
type UnitOfWork interface {
	Run(fn func(opts ...utils.DBOption) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(utils.WithTx(tx))
	})
}
