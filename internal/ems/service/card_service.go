package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
)

// CardService owns the Kanban board.
type CardService struct {
	cardRepo *repository.CardRepository
}

func NewCardService(cardRepo *repository.CardRepository) *CardService {
	return &CardService{cardRepo: cardRepo}
}

// CreateCardRequest carries a new board card.
type CreateCardRequest struct {
	Content     string    `json:"content" binding:"required"`
	Description string    `json:"description" binding:"required"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	Priority    string    `json:"priority"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
}

// CreateCard stores a card, defaulting to Medium priority in the todo
// column.
func (s *CardService) CreateCard(ctx context.Context, req CreateCardRequest) (*entity.Card, error) {
	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	status := req.Status
	if status == "" {
		status = entity.CardStatusTodo
	}
	if !entity.ValidCardStatus(status) {
		return nil, fmt.Errorf("%w: unknown card status %q", ErrValidation, req.Status)
	}

	now := time.Now()
	card := &entity.Card{
		ID:          generateID(),
		Content:     req.Content,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    priority,
		Tags:        req.Tags,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

// ListCards returns the whole board in creation order.
func (s *CardService) ListCards(ctx context.Context) ([]entity.Card, error) {
	return s.cardRepo.ListAll(ctx)
}

// UpdateCardRequest carries a card edit. Nil fields are left unchanged.
type UpdateCardRequest struct {
	Content     *string    `json:"content"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"`
	Tags        *[]string  `json:"tags"`
	Status      *string    `json:"status"`
}

// UpdateCard applies an edit, including moving the card between columns.
func (s *CardService) UpdateCard(ctx context.Context, id string, req UpdateCardRequest) (*entity.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		card.Content = *req.Content
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.DueDate != nil {
		card.DueDate = *req.DueDate
	}
	if req.Priority != nil {
		card.Priority = *req.Priority
	}
	if req.Tags != nil {
		card.Tags = *req.Tags
	}
	if req.Status != nil {
		if !entity.ValidCardStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown card status %q", ErrValidation, *req.Status)
		}
		card.Status = *req.Status
	}
	card.UpdatedAt = time.Now()

	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	return card, nil
}

// DeleteCard removes a card.
func (s *CardService) DeleteCard(ctx context.Context, id string) error {
	return s.cardRepo.Delete(ctx, id)
}
