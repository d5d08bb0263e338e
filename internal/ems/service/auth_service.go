package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidhasia/misty-ems/internal/config"
	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/middleware"
)

const (
	bcryptCost      = 10
	resetCodeExpiry = 15 * time.Minute
)

// AuthService owns accounts, credentials, tokens and the password reset
// flow for both clients and employees.
type AuthService struct {
	clientRepo   *repository.ClientRepository
	employeeRepo *repository.EmployeeRepository
	notifier     Notifier
	cfg          *config.Config
	logger       *zap.Logger
}

func NewAuthService(clientRepo *repository.ClientRepository, employeeRepo *repository.EmployeeRepository, notifier Notifier, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		clientRepo:   clientRepo,
		employeeRepo: employeeRepo,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// RegisterClientRequest carries a client signup.
type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	City     string `json:"city" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterEmployeeRequest carries a staff signup.
type RegisterEmployeeRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterClient stores a new client with a hashed password and sends a
// best-effort welcome mail.
func (s *AuthService) RegisterClient(ctx context.Context, req RegisterClientRequest) (*entity.Client, error) {
	if _, err := s.clientRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup client: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	client := &entity.Client{
		ID:           generateID(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		City:         req.City,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.notify(req.Email, "Welcome to Misty EMS",
		fmt.Sprintf("Hi %s, you signed up for Misty EMS as a client!", req.Name))

	return client, nil
}

// RegisterEmployee stores a new staff account after validating its role.
func (s *AuthService) RegisterEmployee(ctx context.Context, req RegisterEmployeeRequest) (*entity.Employee, error) {
	if !entity.ValidEmployeeRole(req.Role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.employeeRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup employee: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	employee := &entity.Employee{
		ID:           generateID(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	s.notify(req.Email, "Welcome to Misty EMS",
		fmt.Sprintf("Hi %s, you signed up for Misty EMS as an employee!", req.Name))

	return employee, nil
}

// LoginClient checks credentials and issues a token. Unknown email and
// wrong password fail identically so accounts cannot be enumerated.
func (s *AuthService) LoginClient(ctx context.Context, email, password string) (string, *entity.Client, error) {
	client, err := s.clientRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup client: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(client.ID, client.Name, client.Email, entity.RoleClient)
	if err != nil {
		return "", nil, err
	}
	return token, client, nil
}

// LoginEmployee checks credentials and issues a token carrying the
// employee's workflow role.
func (s *AuthService) LoginEmployee(ctx context.Context, email, password string) (string, *entity.Employee, error) {
	employee, err := s.employeeRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup employee: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(employee.ID, employee.Name, employee.Email, employee.Role)
	if err != nil {
		return "", nil, err
	}
	return token, employee, nil
}

// ListProjectManagers returns all employees with the project_manager role.
func (s *AuthService) ListProjectManagers(ctx context.Context) ([]entity.Employee, error) {
	return s.employeeRepo.ListByRole(ctx, entity.RoleProjectManager)
}

// ListClients returns the full client directory.
func (s *AuthService) ListClients(ctx context.Context) ([]entity.Client, error) {
	return s.clientRepo.ListAll(ctx)
}

// GetClient returns one client account.
func (s *AuthService) GetClient(ctx context.Context, id string) (*entity.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// UpdateClientRequest carries a partial client profile update. Nil fields
// are left unchanged.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
	City  *string `json:"city"`
}

// UpdateClient patches a client's profile fields.
func (s *AuthService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*entity.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != client.Email {
		if other, err := s.clientRepo.FindByEmail(ctx, *req.Email); err == nil && other.ID != client.ID {
			return nil, ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup client: %w", err)
		}
		client.Email = *req.Email
	}
	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.City != nil {
		client.City = *req.City
	}

	client.UpdatedAt = time.Now()
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

// DeleteClient removes a client account.
func (s *AuthService) DeleteClient(ctx context.Context, id string) error {
	return s.clientRepo.Delete(ctx, id)
}

// SendResetCode generates a 6-digit code valid for 15 minutes, stores it
// on the client record and mails it.
func (s *AuthService) SendResetCode(ctx context.Context, email string) error {
	client, err := s.clientRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := randomResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	expires := time.Now().Add(resetCodeExpiry)

	client.ResetCode = &code
	client.ResetCodeExpires = &expires
	client.UpdatedAt = time.Now()
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	s.notify(email, "Your Misty EMS Password Reset Code",
		fmt.Sprintf("Your reset code is: %06d", code))

	return nil
}

// VerifyResetCode checks a code against the stored one. A matching code
// past its expiry fails with ErrResetCodeExpired.
func (s *AuthService) VerifyResetCode(ctx context.Context, email string, code int) error {
	client, err := s.clientRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	return checkResetCode(client, code)
}

// ResetPassword consumes a valid code and sets the new password. The code
// is cleared on success, so a replay with the same code fails.
func (s *AuthService) ResetPassword(ctx context.Context, email string, code int, newPassword string) error {
	client, err := s.clientRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := checkResetCode(client, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	client.PasswordHash = string(hash)
	client.ResetCode = nil
	client.ResetCodeExpires = nil
	client.UpdatedAt = time.Now()
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func checkResetCode(client *entity.Client, code int) error {
	if client.ResetCode == nil || *client.ResetCode != code {
		return ErrInvalidResetCode
	}
	if client.ResetCodeExpires == nil || time.Now().After(*client.ResetCodeExpires) {
		return ErrResetCodeExpired
	}
	return nil
}

func (s *AuthService) issueToken(id, name, email, role string) (string, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: id,
		Name:   name,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.Expire)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// notify sends best-effort mail; failures are logged by the mailer and
// never bubble up to the account operation.
func (s *AuthService) notify(to, subject, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	_ = s.notifier.Send(ctx, to, subject, body)
}

func randomResetCode() (int, error) {
	// 100000..999999
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}
