package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/reconcile"
	"atelier/internal/repository"

	"gorm.io/gorm"
)

type ExperienceService struct {
	db   *gorm.DB
	repo repository.ExperienceRepository
}

type CreateExperienceInput struct {
	Title          string
	Company        string
	Location       string
	ExperienceType string
	StartDate      time.Time
	EndDate        *time.Time
	Description    string
	IsCurrent      bool
	Links          reconcile.Field
	Skills         reconcile.Field
}

type UpdateExperienceInput struct {
	ExperienceID   uint
	Title          *string
	Company        *string
	Location       *string
	ExperienceType *string
	StartDate      *time.Time
	EndDate        *time.Time
	EndDateSet     bool
	Description    *string
	IsCurrent      *bool
	Links          reconcile.Field
	Skills         reconcile.Field
}

func NewExperienceService(db *gorm.DB, repo repository.ExperienceRepository) *ExperienceService {
	return &ExperienceService{db: db, repo: repo}
}

func (s *ExperienceService) GetExperience(ctx context.Context, id uint) (*models.Experience, error) {
	experience, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Experience", id)
		}
		return nil, models.NewInternalError(err)
	}
	return experience, nil
}

func (s *ExperienceService) ListExperiences(ctx context.Context, limit, offset int) ([]*models.Experience, int64, error) {
	experiences, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return experiences, total, nil
}

func (s *ExperienceService) CreateExperience(ctx context.Context, in CreateExperienceInput) (*models.Experience, error) {
	span, ctx := observability.NewSpan(ctx, "experience.create")
	defer span.End()

	errs := models.FieldErrors{}
	title := strings.TrimSpace(in.Title)
	validateTitle(errs, title)

	experienceType := in.ExperienceType
	if experienceType == "" {
		experienceType = models.ExperienceTypeJob
	}
	validateExperienceDates(errs, experienceType, in.StartDate, in.EndDate, in.IsCurrent)

	links, tags, ok := parseStrictCollections(errs, in.Links, in.Skills, "skills_data")
	if errs.HasErrors() || !ok {
		observability.ObserveReconcile("experience", observability.OutcomeRejected)
		return nil, errs
	}

	endDate := in.EndDate
	if in.IsCurrent {
		// a current engagement has no end date
		endDate = nil
	}

	experience := &models.Experience{
		Title:          title,
		Company:        strings.TrimSpace(in.Company),
		Location:       strings.TrimSpace(in.Location),
		ExperienceType: experienceType,
		StartDate:      in.StartDate,
		EndDate:        endDate,
		Description:    in.Description,
		IsCurrent:      in.IsCurrent,
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, experience); err != nil {
			return err
		}
		if err := syncExperienceLinks(tx, experience.ID, links); err != nil {
			return err
		}
		if tags != nil {
			return syncExperienceSkills(tx, experience.ID, tags)
		}
		return nil
	})
	if txErr != nil {
		return nil, s.translateExperienceErr(txErr)
	}

	observability.ObserveReconcile("experience", observability.OutcomeCommitted)
	return s.GetExperience(ctx, experience.ID)
}

func (s *ExperienceService) UpdateExperience(ctx context.Context, in UpdateExperienceInput) (*models.Experience, error) {
	span, ctx := observability.NewSpan(ctx, "experience.update")
	defer span.End()

	existing, err := s.repo.GetByID(ctx, in.ExperienceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Experience", in.ExperienceID)
		}
		return nil, models.NewInternalError(err)
	}

	errs := models.FieldErrors{}
	if in.Title != nil {
		existing.Title = strings.TrimSpace(*in.Title)
		validateTitle(errs, existing.Title)
	}
	if in.Company != nil {
		existing.Company = strings.TrimSpace(*in.Company)
	}
	if in.Location != nil {
		existing.Location = strings.TrimSpace(*in.Location)
	}
	if in.ExperienceType != nil {
		existing.ExperienceType = *in.ExperienceType
	}
	if in.StartDate != nil {
		existing.StartDate = *in.StartDate
	}
	if in.EndDateSet {
		existing.EndDate = in.EndDate
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.IsCurrent != nil {
		existing.IsCurrent = *in.IsCurrent
	}
	validateExperienceDates(errs, existing.ExperienceType, existing.StartDate, existing.EndDate, existing.IsCurrent)

	links, tags, ok := parseStrictCollections(errs, in.Links, in.Skills, "skills_data")
	if errs.HasErrors() || !ok {
		observability.ObserveReconcile("experience", observability.OutcomeRejected)
		return nil, errs
	}

	if existing.IsCurrent {
		existing.EndDate = nil
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing.Links = nil
		existing.SkillRefs = nil
		if err := s.repo.WithTx(tx).Update(ctx, existing); err != nil {
			return err
		}
		if in.Links.Supplied() {
			if err := syncExperienceLinks(tx, existing.ID, links); err != nil {
				return err
			}
		}
		if in.Skills.Supplied() {
			return syncExperienceSkills(tx, existing.ID, tags)
		}
		return nil
	})
	if txErr != nil {
		return nil, s.translateExperienceErr(txErr)
	}

	observability.ObserveReconcile("experience", observability.OutcomeCommitted)
	return s.GetExperience(ctx, existing.ID)
}

func (s *ExperienceService) DeleteExperience(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Experience", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *ExperienceService) AddLink(ctx context.Context, experienceID uint, url, text string, order int) (*models.ExperienceLink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, models.NewFieldError("url", "URL is required.")
	}
	if _, err := s.repo.GetByID(ctx, experienceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Experience", experienceID)
		}
		return nil, models.NewInternalError(err)
	}
	link := &models.ExperienceLink{ExperienceID: experienceID, URL: url, Text: strings.TrimSpace(text), Order: order}
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, models.NewInternalError(err)
	}
	return link, nil
}

func (s *ExperienceService) DeleteLink(ctx context.Context, experienceID, linkID uint) error {
	if err := s.repo.DeleteLink(ctx, experienceID, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Link", linkID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *ExperienceService) translateExperienceErr(err error) error {
	observability.ObserveReconcile("experience", observability.OutcomeFailed)
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewFieldError("skills", "A skill with this name already exists.")
	}
	return models.NewInternalError(err)
}

func validateExperienceDates(errs models.FieldErrors, experienceType string, start time.Time, end *time.Time, isCurrent bool) {
	if !models.ValidExperienceType(experienceType) {
		errs.Add("experience_type", fmt.Sprintf("%q is not a valid experience type.", experienceType))
	}
	if start.IsZero() {
		errs.Add("start_date", "Start date is required.")
		return
	}
	if !isCurrent && end != nil && end.Before(start) {
		errs.Add("end_date", "End date cannot be before the start date.")
	}
}

func syncExperienceLinks(tx *gorm.DB, experienceID uint, items []reconcile.LinkItem) error {
	rows := make([]models.ExperienceLink, len(items))
	for i, item := range items {
		rows[i] = models.ExperienceLink{ExperienceID: experienceID, URL: item.URL, Text: item.Text, Order: item.Order}
	}
	return reconcile.Sync(tx, reconcile.ExperiencePolicies[reconcile.CollectionLinks], "experience_id", experienceID, rows)
}

func syncExperienceSkills(tx *gorm.DB, experienceID uint, tags []reconcile.TagInput) error {
	refs, err := reconcile.ResolveTags(tx, "skills_data", tags)
	if err != nil {
		return err
	}
	seen := make(map[uint]struct{}, len(refs))
	rows := make([]models.ExperienceSkillRef, 0, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		rows = append(rows, models.ExperienceSkillRef{ExperienceID: experienceID, SkillReferenceID: ref.ID})
	}
	return reconcile.Sync(tx, reconcile.ExperiencePolicies[reconcile.CollectionSkills], "experience_id", experienceID, rows)
}
