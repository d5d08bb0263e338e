package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidhasia/misty-ems/internal/ems/service"
)

// AuthHandler serves account registration, login, the password reset flow
// and the account directories.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterClient POST /auth/client/register
func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req service.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	client, err := h.svc.RegisterClient(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, client.Public())
}

// RegisterEmployee POST /auth/employee/register
func (h *AuthHandler) RegisterEmployee(c *gin.Context) {
	var req service.RegisterEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	employee, err := h.svc.RegisterEmployee(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, employee.Public())
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginClient POST /auth/client/login
func (h *AuthHandler) LoginClient(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	token, client, err := h.svc.LoginClient(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{
		"token": token,
		"user":  client.Public(),
	})
}

// LoginEmployee POST /auth/employee/login
func (h *AuthHandler) LoginEmployee(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	token, employee, err := h.svc.LoginEmployee(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{
		"token": token,
		"user":  employee.Public(),
	})
}

// ListProjectManagers GET /employees/project-managers
func (h *AuthHandler) ListProjectManagers(c *gin.Context) {
	pms, err := h.svc.ListProjectManagers(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	items := make([]map[string]interface{}, 0, len(pms))
	for i := range pms {
		items = append(items, pms[i].Public())
	}
	Success(c, gin.H{"items": items})
}

// ListClients GET /clients
func (h *AuthHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	items := make([]map[string]interface{}, 0, len(clients))
	for i := range clients {
		items = append(items, clients[i].Public())
	}
	Success(c, gin.H{"items": items})
}

// GetClient GET /clients/:id
func (h *AuthHandler) GetClient(c *gin.Context) {
	client, err := h.svc.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, client.Public())
}

// UpdateClient PUT /clients/:id
func (h *AuthHandler) UpdateClient(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	client, err := h.svc.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, client.Public())
}

// DeleteClient DELETE /clients/:id
func (h *AuthHandler) DeleteClient(c *gin.Context) {
	if err := h.svc.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "client deleted"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.SendResetCode(c.Request.Context(), req.Email); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "reset code sent"})
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  int    `json:"code" binding:"required"`
}

// VerifyResetCode POST /auth/verify-code
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "code verified"})
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        int    `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "password updated"})
}
