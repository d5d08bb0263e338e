package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/config"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
)

// Service-level failure classes. Handlers map these onto the response
// envelope; anything unrecognized becomes an internal error.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidRole        = errors.New("invalid role")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("illegal qc status transition")
	ErrInvalidResetCode   = errors.New("invalid reset code")
	ErrResetCodeExpired   = errors.New("reset code expired")
	ErrValidation         = errors.New("validation failed")
)

// Summarizer compresses a task description into bullet points. It never
// fails: degraded reports that the text is the fixed fallback rather
// than a real summary.
type Summarizer interface {
	Summarize(ctx context.Context, description string) (text string, degraded bool)
}

// Notifier delivers a notification email. Best-effort, at-most-once;
// workflow callers downgrade failures to warnings.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// notifyTimeout bounds every outbound mail attempt so a slow SMTP server
// cannot stall a request.
const notifyTimeout = 10 * time.Second

// Services bundles the business services behind a single constructor.
type Services struct {
	Auth   *AuthService
	Task   *TaskService
	Review *ReviewService
	Card   *CardService
	Export *ExportService
}

// NewServices wires the service layer.
func NewServices(repos *repository.Repositories, cfg *config.Config, summarizer Summarizer, notifier Notifier, logger *zap.Logger) *Services {
	return &Services{
		Auth:   NewAuthService(repos.Client, repos.Employee, notifier, cfg, logger),
		Task:   NewTaskService(repos.Task, summarizer, logger),
		Review: NewReviewService(repos, notifier, logger),
		Card:   NewCardService(repos.Card),
		Export: NewExportService(repos.QCReport, repos.QCTask),
	}
}

func generateID() string {
	return uuid.New().String()[:32]
}
