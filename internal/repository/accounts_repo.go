package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

type AccountsRepository interface {
	Create(account *models.Account) error
	GetByIdentityKey(identityKey string) (*models.Account, error)
	GetByID(id uint) (*models.Account, error)
	Save(account *models.Account) error
}

type accountsRepository struct {
	db *gorm.DB
}

func NewAccountsRepository(db *gorm.DB) AccountsRepository {
	return &accountsRepository{db: db}
}

func (r *accountsRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		errorString := err.Error()
		if strings.Contains(errorString, "UNIQUE constraint failed") || strings.Contains(errorString, "duplicate key value violates unique constraint") {
			return errs.ErrAlreadyExists
		}

		return errs.ErrInternal
	}

	return nil
}

func (r *accountsRepository) GetByIdentityKey(identityKey string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Preload("Holdings").Where("identity_key = ?", identityKey).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}

		return nil, err
	}
	return &account, nil
}

func (r *accountsRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}

		return nil, err
	}
	return &account, nil
}

func (r *accountsRepository) Save(account *models.Account) error {
	return r.db.Omit("Holdings").Save(account).Error
}
