package repository

import (
	"context"

	"atelier/internal/models"

	"gorm.io/gorm"
)

// SkillRepository covers both the skill catalog and portfolio entries.
type SkillRepository interface {
	WithTx(tx *gorm.DB) SkillRepository
	ListReferences(ctx context.Context) ([]*models.SkillReference, error)
	GetReference(ctx context.Context, id uint) (*models.SkillReference, error)
	CreateReference(ctx context.Context, ref *models.SkillReference) error
	ListSkills(ctx context.Context) ([]*models.Skill, error)
	GetSkill(ctx context.Context, id uint) (*models.Skill, error)
	CreateSkill(ctx context.Context, skill *models.Skill) error
	DeleteSkill(ctx context.Context, id uint) error
}

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) WithTx(tx *gorm.DB) SkillRepository {
	return &skillRepository{db: tx}
}

func (r *skillRepository) ListReferences(ctx context.Context) ([]*models.SkillReference, error) {
	var refs []*models.SkillReference
	err := r.db.WithContext(ctx).Order("name").Find(&refs).Error
	return refs, err
}

func (r *skillRepository) GetReference(ctx context.Context, id uint) (*models.SkillReference, error) {
	var ref models.SkillReference
	if err := r.db.WithContext(ctx).First(&ref, id).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *skillRepository) CreateReference(ctx context.Context, ref *models.SkillReference) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *skillRepository) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	var skills []*models.Skill
	err := r.db.WithContext(ctx).Preload("Reference").Find(&skills).Error
	return skills, err
}

func (r *skillRepository) GetSkill(ctx context.Context, id uint) (*models.Skill, error) {
	var skill models.Skill
	if err := r.db.WithContext(ctx).Preload("Reference").First(&skill, id).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) CreateSkill(ctx context.Context, skill *models.Skill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *skillRepository) DeleteSkill(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Skill{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
