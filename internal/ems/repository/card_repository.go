package repository

import (
	"context"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"gorm.io/gorm"
)

// CardRepository persists Kanban board cards.
type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepository) Update(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Save(card).Error
}

func (r *CardRepository) FindByID(ctx context.Context, id string) (*entity.Card, error) {
	var card entity.Card
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &card, nil
}

func (r *CardRepository) ListAll(ctx context.Context) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&cards).Error
	return cards, err
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Card{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
