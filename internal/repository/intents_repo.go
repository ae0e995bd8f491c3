package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

type IntentsRepository interface {
	Create(intent *models.PaymentIntent) error
	Get(id string) (*models.PaymentIntent, error)
	Update(intent *models.PaymentIntent) error
}

type intentsRepository struct {
	db *gorm.DB
}

func NewIntentsRepository(db *gorm.DB) IntentsRepository {
	return &intentsRepository{db: db}
}

func (r *intentsRepository) Create(intent *models.PaymentIntent) error {
	return r.db.Create(intent).Error
}

func (r *intentsRepository) Get(id string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := r.db.Where("id = ?", id).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

func (r *intentsRepository) Update(intent *models.PaymentIntent) error {
	return r.db.Save(intent).Error
}
