package repository

import (
	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/models"
)

type TransactionsRepository interface {
	Append(record *models.Transaction) error
	ListByAccount(accountID uint, limit int) ([]models.Transaction, error)
}

type transactionsRepository struct {
	db *gorm.DB
}

func NewTransactionsRepository(db *gorm.DB) TransactionsRepository {
	return &transactionsRepository{db: db}
}

func (r *transactionsRepository) Append(record *models.Transaction) error {
	return r.db.Create(record).Error
}

// ListByAccount returns records newest-first. A non-positive limit means
// the full history.
func (r *transactionsRepository) ListByAccount(accountID uint, limit int) ([]models.Transaction, error) {
	query := r.db.Where("account_id = ?", accountID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.Transaction
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
