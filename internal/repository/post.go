// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"atelier/internal/cache"
	"atelier/internal/models"
	"atelier/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
	GetLink(ctx context.Context, postID, linkID uint) (*models.Link, error)
	SaveLink(ctx context.Context, link *models.Link) error
	DeleteLink(ctx context.Context, postID, linkID uint) error
	GetImage(ctx context.Context, postID, imageID uint) (*models.Image, error)
	SaveImage(ctx context.Context, image *models.Image) error
	DeleteImage(ctx context.Context, postID, imageID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

// Create inserts the post row. Cache invalidation is the caller's job:
// mutations here may run on an uncommitted transaction, where clearing keys
// would let a concurrent read re-fill them with pre-commit state.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("links.\"order\"") }).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Images").
			Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("links.\"order\"") }).
			Where("slug = ?", slug).
			First(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("links.\"order\"") }).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Link{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// TitleTaken reports whether another post already uses the title,
// compared case-insensitively. excludeID skips the post being updated.
func (r *postRepository) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("LOWER(title) = LOWER(?)", title)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) GetLink(ctx context.Context, postID, linkID uint) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", linkID, postID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *postRepository) SaveLink(ctx context.Context, link *models.Link) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *postRepository) DeleteLink(ctx context.Context, postID, linkID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", linkID, postID).
		Delete(&models.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) GetImage(ctx context.Context, postID, imageID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", imageID, postID).
		First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *postRepository) SaveImage(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Save(image).Error
}

func (r *postRepository) DeleteImage(ctx context.Context, postID, imageID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", imageID, postID).
		Delete(&models.Image{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
