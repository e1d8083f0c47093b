package registrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/notify"
	"charity-events/internal/pass"
	"charity-events/internal/utils"
)

type RegistrationDBLayer interface {
	CreateRegistration(ctx context.Context, reg *models.Registration) (string, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error)
	GetRegistrationByID(ctx context.Context, id int64) (*models.Registration, error)
}

type RegistrationService struct {
	DB        RegistrationDBLayer
	Signer    *pass.Signer
	Publisher notify.Publisher
	Logger    *logger.Logger
}

func NewRegistrationService(db RegistrationDBLayer, signer *pass.Signer, publisher notify.Publisher, log *logger.Logger) *RegistrationService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &RegistrationService{DB: db, Signer: signer, Publisher: publisher, Logger: log}
}

// Create registers an attendee and books the tickets.
func (s *RegistrationService) Create(ctx context.Context, in models.RegistrationInput) (*models.RegistrationResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if !hasDottedDomain(in.Email) {
		return nil, fmt.Errorf("%w: email must be a valid email address", models.ErrValidation)
	}

	reg := &models.Registration{
		EventID:      in.EventID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Tickets:      in.Tickets,
		RegisteredAt: time.Now().UTC(),
	}
	eventName, err := s.DB.CreateRegistration(ctx, reg)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.LogRegistration(models.ActionCreated, reg.ID, fmt.Sprintf("%d tickets for event %d", reg.Tickets, reg.EventID))
	}
	s.Publisher.Publish(ctx, notify.NewChange(models.EntityRegistration, models.ActionCreated, reg.ID))

	return &models.RegistrationResult{ID: reg.ID, EventID: reg.EventID, EventName: eventName}, nil
}

func (s *RegistrationService) List(ctx context.Context, eventID int64) ([]models.Registration, error) {
	return s.DB.ListRegistrations(ctx, eventID)
}

func (s *RegistrationService) Get(ctx context.Context, id int64) (*models.Registration, error) {
	return s.DB.GetRegistrationByID(ctx, id)
}

// Pass renders the registration's signed pass as a PNG QR code. The caller
// must name the registered email; a wrong one reads as not found so ids
// cannot be enumerated.
func (s *RegistrationService) Pass(ctx context.Context, id int64, email string) ([]byte, error) {
	reg, err := s.DB.GetRegistrationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), reg.Email) || reg.Email == "" {
		if s.Logger != nil {
			s.Logger.LogSecurity("PASS_DENIED", fmt.Sprintf("registration %d", id))
		}
		return nil, fmt.Errorf("%w: registration %d", models.ErrNotFound, id)
	}
	png, err := s.Signer.QR(claimsFor(reg))
	if err != nil {
		return nil, fmt.Errorf("render pass for registration %d: %w", id, err)
	}
	return png, nil
}

// Token returns the signed pass token without rendering it.
func (s *RegistrationService) Token(ctx context.Context, id int64) (string, error) {
	reg, err := s.DB.GetRegistrationByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Signer.Token(claimsFor(reg))
}

// VerifyPass checks a scanned token against the stored registration.
func (s *RegistrationService) VerifyPass(ctx context.Context, token string) (*models.Registration, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		if s.Logger != nil {
			s.Logger.LogSecurity("PASS_REJECTED", err.Error())
		}
		return nil, err
	}
	reg, err := s.DB.GetRegistrationByID(ctx, claims.RegistrationID)
	if err != nil {
		return nil, err
	}
	if reg.EventID != claims.EventID || reg.Email != claims.Email {
		return nil, fmt.Errorf("%w: pass does not match registration %d", models.ErrValidation, reg.ID)
	}
	return reg, nil
}

func claimsFor(reg *models.Registration) models.PassClaims {
	return models.PassClaims{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Email:          reg.Email,
		Tickets:        reg.Tickets,
	}
}

func hasDottedDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
