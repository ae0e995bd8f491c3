package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

type HoldingsRepository interface {
	Add(holding *models.Holding) error
	Get(accountID uint, symbol string) (*models.Holding, error)
	List(accountID uint) ([]models.Holding, error)
	Update(holding *models.Holding) error
	Delete(accountID uint, symbol string) error
}

type holdingsRepository struct {
	db *gorm.DB
}

func NewHoldingsRepository(db *gorm.DB) HoldingsRepository {
	return &holdingsRepository{db: db}
}

func (r *holdingsRepository) Add(holding *models.Holding) error {
	if err := r.db.Create(holding).Error; err != nil {
		errorString := err.Error()
		if strings.Contains(errorString, "UNIQUE") || strings.Contains(errorString, "duplicate") {
			return errs.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *holdingsRepository) Get(accountID uint, symbol string) (*models.Holding, error) {
	var holding models.Holding

	if err := r.db.Where("account_id = ? AND symbol = ?", accountID, symbol).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return &holding, nil
}

func (r *holdingsRepository) List(accountID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := r.db.Where("account_id = ?", accountID).Order("symbol ASC").Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *holdingsRepository) Update(holding *models.Holding) error {
	return r.db.Save(holding).Error
}

func (r *holdingsRepository) Delete(accountID uint, symbol string) error {
	result := r.db.Where("account_id = ? AND symbol = ?", accountID, symbol).Delete(&models.Holding{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}

	return nil
}
