package repository

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/observability"

	"gorm.io/gorm"
)

// ExperienceRepository defines the interface for experience data operations
type ExperienceRepository interface {
	WithTx(tx *gorm.DB) ExperienceRepository
	Create(ctx context.Context, experience *models.Experience) error
	GetByID(ctx context.Context, id uint) (*models.Experience, error)
	List(ctx context.Context, limit, offset int) ([]*models.Experience, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, experience *models.Experience) error
	Delete(ctx context.Context, id uint) error
	GetLink(ctx context.Context, experienceID, linkID uint) (*models.ExperienceLink, error)
	SaveLink(ctx context.Context, link *models.ExperienceLink) error
	DeleteLink(ctx context.Context, experienceID, linkID uint) error
}

type experienceRepository struct {
	db *gorm.DB
}

// NewExperienceRepository creates a new experience repository
func NewExperienceRepository(db *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) WithTx(tx *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: tx}
}

func (r *experienceRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("experience_links.\"order\"") }).
		Preload("SkillRefs.SkillReference")
}

func (r *experienceRepository) Create(ctx context.Context, experience *models.Experience) error {
	defer observability.TrackQuery("create", "experiences")()
	return r.db.WithContext(ctx).Create(experience).Error
}

func (r *experienceRepository) GetByID(ctx context.Context, id uint) (*models.Experience, error) {
	defer observability.TrackQuery("get", "experiences")()
	var experience models.Experience
	err := r.withChildren(r.db.WithContext(ctx)).First(&experience, id).Error
	if err != nil {
		return nil, err
	}
	return &experience, nil
}

// List orders current engagements first, then by most recent start date.
func (r *experienceRepository) List(ctx context.Context, limit, offset int) ([]*models.Experience, error) {
	defer observability.TrackQuery("list", "experiences")()
	var experiences []*models.Experience
	err := r.withChildren(r.db.WithContext(ctx)).
		Order("is_current DESC").
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&experiences).Error
	return experiences, err
}

func (r *experienceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Experience{}).Count(&count).Error
	return count, err
}

func (r *experienceRepository) Update(ctx context.Context, experience *models.Experience) error {
	defer observability.TrackQuery("update", "experiences")()
	return r.db.WithContext(ctx).Save(experience).Error
}

func (r *experienceRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "experiences")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.ExperienceLink{}, &models.ExperienceSkillRef{},
		} {
			if err := tx.Where("experience_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Experience{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *experienceRepository) GetLink(ctx context.Context, experienceID, linkID uint) (*models.ExperienceLink, error) {
	var link models.ExperienceLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND experience_id = ?", linkID, experienceID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *experienceRepository) SaveLink(ctx context.Context, link *models.ExperienceLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *experienceRepository) DeleteLink(ctx context.Context, experienceID, linkID uint) error {
	return deleteOwnedChild(r.db.WithContext(ctx), &models.ExperienceLink{}, "experience_id", experienceID, linkID)
}
