package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidhasia/misty-ems/internal/ems/service"
)

// CardHandler serves the Kanban board.
type CardHandler struct {
	svc *service.CardService
}

func NewCardHandler(svc *service.CardService) *CardHandler {
	return &CardHandler{svc: svc}
}

// Create POST /cards
func (h *CardHandler) Create(c *gin.Context) {
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	card, err := h.svc.CreateCard(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, card)
}

// List GET /cards
func (h *CardHandler) List(c *gin.Context) {
	cards, err := h.svc.ListCards(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": cards})
}

// Update PUT /cards/:id
func (h *CardHandler) Update(c *gin.Context) {
	var req service.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	card, err := h.svc.UpdateCard(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, card)
}

// Delete DELETE /cards/:id
func (h *CardHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "card deleted"})
}
