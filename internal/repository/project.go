package repository

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/observability"

	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	WithTx(tx *gorm.DB) ProjectRepository
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, limit, offset int) ([]*models.Project, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
	TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
	GetLink(ctx context.Context, projectID, linkID uint) (*models.ProjectLink, error)
	SaveLink(ctx context.Context, link *models.ProjectLink) error
	DeleteLink(ctx context.Context, projectID, linkID uint) error
	GetMedia(ctx context.Context, projectID, mediaID uint) (*models.ProjectMedia, error)
	SaveMedia(ctx context.Context, media *models.ProjectMedia) error
	DeleteMedia(ctx context.Context, projectID, mediaID uint) error
	AddSkillRef(ctx context.Context, ref *models.ProjectSkillRef) error
	DeleteSkillRef(ctx context.Context, projectID, refID uint) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &projectRepository{db: tx}
}

func (r *projectRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("project_media.\"order\"") }).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("project_links.\"order\"") }).
		Preload("SkillRefs.SkillReference")
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	defer observability.TrackQuery("create", "projects")()
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	defer observability.TrackQuery("get", "projects")()
	var project models.Project
	err := r.withChildren(r.db.WithContext(ctx)).First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	defer observability.TrackQuery("list", "projects")()
	var projects []*models.Project
	err := r.withChildren(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	defer observability.TrackQuery("update", "projects")()
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "projects")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.ProjectLink{}, &models.ProjectMedia{}, &models.ProjectSkillRef{},
		} {
			if err := tx.Where("project_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *projectRepository) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Project{}).Where("LOWER(title) = LOWER(?)", title)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *projectRepository) GetLink(ctx context.Context, projectID, linkID uint) (*models.ProjectLink, error) {
	var link models.ProjectLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", linkID, projectID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *projectRepository) SaveLink(ctx context.Context, link *models.ProjectLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *projectRepository) DeleteLink(ctx context.Context, projectID, linkID uint) error {
	return deleteOwnedChild(r.db.WithContext(ctx), &models.ProjectLink{}, "project_id", projectID, linkID)
}

func (r *projectRepository) GetMedia(ctx context.Context, projectID, mediaID uint) (*models.ProjectMedia, error) {
	var media models.ProjectMedia
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", mediaID, projectID).
		First(&media).Error
	if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *projectRepository) SaveMedia(ctx context.Context, media *models.ProjectMedia) error {
	return r.db.WithContext(ctx).Save(media).Error
}

func (r *projectRepository) AddSkillRef(ctx context.Context, ref *models.ProjectSkillRef) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *projectRepository) DeleteMedia(ctx context.Context, projectID, mediaID uint) error {
	return deleteOwnedChild(r.db.WithContext(ctx), &models.ProjectMedia{}, "project_id", projectID, mediaID)
}

func (r *projectRepository) DeleteSkillRef(ctx context.Context, projectID, refID uint) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND skill_reference_id = ?", projectID, refID).
		Delete(&models.ProjectSkillRef{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
