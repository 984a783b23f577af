package service

import (
	"context"
	"errors"
	"strings"

	"atelier/internal/models"
	"atelier/internal/repository"

	"gorm.io/gorm"
)

type SkillService struct {
	repo repository.SkillRepository
}

type CreateSkillReferenceInput struct {
	Name   string
	IconID string
	Icon   string
}

func NewSkillService(repo repository.SkillRepository) *SkillService {
	return &SkillService{repo: repo}
}

func (s *SkillService) ListReferences(ctx context.Context) ([]*models.SkillReference, error) {
	refs, err := s.repo.ListReferences(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return refs, nil
}

func (s *SkillService) CreateReference(ctx context.Context, in CreateSkillReferenceInput) (*models.SkillReference, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewFieldError("name", "Name is required.")
	}
	ref := &models.SkillReference{Name: name, IconID: in.IconID, Icon: in.Icon}
	if err := s.repo.CreateReference(ctx, ref); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewFieldError("name", "A skill with this name already exists.")
		}
		return nil, models.NewInternalError(err)
	}
	return ref, nil
}

func (s *SkillService) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	skills, err := s.repo.ListSkills(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

// CreateSkill adds a portfolio entry for a catalog reference. At most one
// entry per reference.
func (s *SkillService) CreateSkill(ctx context.Context, referenceID uint) (*models.Skill, error) {
	if _, err := s.repo.GetReference(ctx, referenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewFieldError("reference", "The skill reference does not exist.")
		}
		return nil, models.NewInternalError(err)
	}
	skill := &models.Skill{ReferenceID: referenceID}
	if err := s.repo.CreateSkill(ctx, skill); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewFieldError("reference", "This skill is already listed.")
		}
		return nil, models.NewInternalError(err)
	}
	return s.getSkill(ctx, skill.ID)
}

func (s *SkillService) DeleteSkill(ctx context.Context, id uint) error {
	if err := s.repo.DeleteSkill(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Skill", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *SkillService) getSkill(ctx context.Context, id uint) (*models.Skill, error) {
	skill, err := s.repo.GetSkill(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return skill, nil
}
