package service

import (
	"context"
	"errors"
	"strings"

	"atelier/internal/blob"
	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/repository"

	"gorm.io/gorm"
)

// CoreService maintains the hero and about singletons and contact messages.
type CoreService struct {
	repo  repository.CoreRepository
	blobs blob.Store
}

type UpdateHeroInput struct {
	Headline    string
	Subheadline string
	Instagram   string
	LinkedIn    string
	GitHub      string
	IsActive    bool
	Image       *blob.Upload
}

type UpdateAboutInput struct {
	Title       string
	Description string
	HiringEmail string
	CV          *blob.Upload
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func NewCoreService(repo repository.CoreRepository, blobs blob.Store) *CoreService {
	return &CoreService{repo: repo, blobs: blobs}
}

func (s *CoreService) GetHero(ctx context.Context) (*models.HeroSection, error) {
	hero, err := s.repo.GetHero(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Hero", "active")
		}
		return nil, models.NewInternalError(err)
	}
	return hero, nil
}

func (s *CoreService) UpdateHero(ctx context.Context, in UpdateHeroInput) (*models.HeroSection, error) {
	headline := strings.TrimSpace(in.Headline)
	if headline == "" {
		return nil, models.NewFieldError("headline", "Headline is required.")
	}

	hero := &models.HeroSection{
		Headline:    headline,
		Subheadline: in.Subheadline,
		Instagram:   in.Instagram,
		LinkedIn:    in.LinkedIn,
		GitHub:      in.GitHub,
		IsActive:    in.IsActive,
	}

	if existing, err := s.repo.GetHero(ctx); err == nil {
		hero.ImageURL = existing.ImageURL
	}
	if in.Image != nil {
		stored, err := s.blobs.Save(ctx, *in.Image)
		if err != nil {
			return nil, translateBlobErr("image", in.Image.Filename, err)
		}
		hero.ImageURL = stored.URL
	}

	if err := s.repo.UpsertHero(ctx, hero); err != nil {
		return nil, models.NewInternalError(err)
	}
	return hero, nil
}

func (s *CoreService) GetAbout(ctx context.Context) (*models.About, error) {
	about, err := s.repo.GetAbout(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("About", "singleton")
		}
		return nil, models.NewInternalError(err)
	}
	return about, nil
}

func (s *CoreService) UpdateAbout(ctx context.Context, in UpdateAboutInput) (*models.About, error) {
	about := &models.About{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		HiringEmail: strings.TrimSpace(in.HiringEmail),
	}
	if about.Title == "" {
		about.Title = "About"
	}

	var oldCV string
	if existing, err := s.repo.GetAbout(ctx); err == nil {
		about.CVPublicID = existing.CVPublicID
		about.CVURL = existing.CVURL
		oldCV = existing.CVPublicID
	}
	if in.CV != nil {
		stored, err := s.blobs.Save(ctx, *in.CV)
		if err != nil {
			return nil, translateBlobErr("cv", in.CV.Filename, err)
		}
		about.CVPublicID = stored.PublicID
		about.CVURL = stored.URL
	}

	if err := s.repo.UpsertAbout(ctx, about); err != nil {
		return nil, models.NewInternalError(err)
	}
	if in.CV != nil && oldCV != "" && oldCV != about.CVPublicID {
		if err := s.blobs.Delete(ctx, oldCV); err != nil {
			observability.GlobalLogger.Warn("blob delete failed", "public_id", oldCV, "error", err)
		}
	}
	return about, nil
}

func (s *CoreService) SubmitContactMessage(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	errs := models.FieldErrors{}
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		errs.Add("name", "Name is too short.")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		errs.Add("email", "Invalid email address.")
	}
	subject := strings.TrimSpace(in.Subject)
	if len(subject) > 200 {
		errs.Add("subject", "Subject is too long.")
	}
	message := strings.TrimSpace(in.Message)
	if len(message) < 10 {
		errs.Add("message", "Message is too short.")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	msg := &models.ContactMessage{Name: name, Email: email, Subject: subject, Message: message}
	if err := s.repo.CreateContactMessage(ctx, msg); err != nil {
		return nil, models.NewInternalError(err)
	}
	return msg, nil
}

func (s *CoreService) ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	msgs, err := s.repo.ListContactMessages(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (s *CoreService) MarkContactMessageRead(ctx context.Context, id uint) error {
	if err := s.repo.MarkContactMessageRead(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Message", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *CoreService) DeleteContactMessage(ctx context.Context, id uint) error {
	if err := s.repo.DeleteContactMessage(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Message", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
