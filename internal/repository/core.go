package repository

import (
	"context"
	"errors"

	"atelier/internal/cache"
	"atelier/internal/models"

	"gorm.io/gorm"
)

// CoreRepository holds the singleton rows (hero, about) and contact messages.
type CoreRepository interface {
	GetHero(ctx context.Context) (*models.HeroSection, error)
	UpsertHero(ctx context.Context, hero *models.HeroSection) error
	GetAbout(ctx context.Context) (*models.About, error)
	UpsertAbout(ctx context.Context, about *models.About) error
	CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error
	ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error)
	GetContactMessage(ctx context.Context, id uint) (*models.ContactMessage, error)
	MarkContactMessageRead(ctx context.Context, id uint) error
	DeleteContactMessage(ctx context.Context, id uint) error
}

type coreRepository struct {
	db *gorm.DB
}

// NewCoreRepository creates a new core repository
func NewCoreRepository(db *gorm.DB) CoreRepository {
	return &coreRepository{db: db}
}

func (r *coreRepository) GetHero(ctx context.Context) (*models.HeroSection, error) {
	var hero models.HeroSection
	err := cache.Aside(ctx, cache.HeroKey(), &hero, cache.HeroTTL, func() error {
		return r.db.WithContext(ctx).Where("is_active = ?", true).First(&hero).Error
	})
	if err != nil {
		return nil, err
	}
	return &hero, nil
}

// UpsertHero writes the singleton row: the first PUT creates it, later PUTs
// overwrite it in place.
func (r *coreRepository) UpsertHero(ctx context.Context, hero *models.HeroSection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.HeroSection
		if err := tx.First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(hero).Error
			}
			return err
		}
		hero.ID = existing.ID
		return tx.Save(hero).Error
	})
	if err == nil {
		cache.Invalidate(ctx, cache.HeroKey())
	}
	return err
}

func (r *coreRepository) GetAbout(ctx context.Context) (*models.About, error) {
	var about models.About
	if err := r.db.WithContext(ctx).First(&about).Error; err != nil {
		return nil, err
	}
	return &about, nil
}

func (r *coreRepository) UpsertAbout(ctx context.Context, about *models.About) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.About
		if err := tx.First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(about).Error
			}
			return err
		}
		about.ID = existing.ID
		return tx.Save(about).Error
	})
}

func (r *coreRepository) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *coreRepository) ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	var msgs []*models.ContactMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, err
}

func (r *coreRepository) GetContactMessage(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *coreRepository) MarkContactMessageRead(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *coreRepository) DeleteContactMessage(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ContactMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
