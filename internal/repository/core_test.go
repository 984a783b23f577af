package repository

import (
	"context"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCoreRepositoryHeroSingleton(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCoreRepository(db)

	t.Run("empty table is not found", func(t *testing.T) {
		_, err := repo.GetHero(ctx)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("first put creates, second overwrites", func(t *testing.T) {
		require.NoError(t, repo.UpsertHero(ctx, &models.HeroSection{Headline: "Hi", IsActive: true}))
		require.NoError(t, repo.UpsertHero(ctx, &models.HeroSection{Headline: "Hello", IsActive: true}))

		var count int64
		require.NoError(t, db.Model(&models.HeroSection{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		hero, err := repo.GetHero(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hello", hero.Headline)
	})
}

func TestCoreRepositoryAboutSingleton(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCoreRepository(db)

	require.NoError(t, repo.UpsertAbout(ctx, &models.About{Title: "About", Description: "v1"}))
	require.NoError(t, repo.UpsertAbout(ctx, &models.About{Title: "About", Description: "v2"}))

	var count int64
	require.NoError(t, db.Model(&models.About{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	about, err := repo.GetAbout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", about.Description)
}

func TestCoreRepositoryContactMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewCoreRepository(newTestDB(t))

	msg := &models.ContactMessage{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello",
		Message: "Hiring?",
	}
	require.NoError(t, repo.CreateContactMessage(ctx, msg))

	t.Run("list", func(t *testing.T) {
		msgs, err := repo.ListContactMessages(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.False(t, msgs[0].IsRead)
	})

	t.Run("mark read", func(t *testing.T) {
		require.NoError(t, repo.MarkContactMessageRead(ctx, msg.ID))
		got, err := repo.GetContactMessage(ctx, msg.ID)
		require.NoError(t, err)
		assert.True(t, got.IsRead)
	})

	t.Run("mark read unknown id", func(t *testing.T) {
		assert.ErrorIs(t, repo.MarkContactMessageRead(ctx, 999), gorm.ErrRecordNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteContactMessage(ctx, msg.ID))
		assert.ErrorIs(t, repo.DeleteContactMessage(ctx, msg.ID), gorm.ErrRecordNotFound)
	})
}

func TestSkillRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSkillRepository(db)

	ref := &models.SkillReference{Name: "Go", Icon: "/icons/go.svg"}
	require.NoError(t, repo.CreateReference(ctx, ref))

	t.Run("references sorted by name", func(t *testing.T) {
		require.NoError(t, repo.CreateReference(ctx, &models.SkillReference{Name: "Ansible"}))
		refs, err := repo.ListReferences(ctx)
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "Ansible", refs[0].Name)
	})

	t.Run("duplicate reference name conflicts", func(t *testing.T) {
		err := repo.CreateReference(ctx, &models.SkillReference{Name: "Go"})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("skill entries preload their reference", func(t *testing.T) {
		skill := &models.Skill{ReferenceID: ref.ID}
		require.NoError(t, repo.CreateSkill(ctx, skill))

		skills, err := repo.ListSkills(ctx)
		require.NoError(t, err)
		require.Len(t, skills, 1)
		assert.Equal(t, "Go", skills[0].Reference.Name)
	})

	t.Run("one entry per reference", func(t *testing.T) {
		err := repo.CreateSkill(ctx, &models.Skill{ReferenceID: ref.ID})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("delete skill leaves the catalog row", func(t *testing.T) {
		skills, err := repo.ListSkills(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.DeleteSkill(ctx, skills[0].ID))

		refs, err := repo.ListReferences(ctx)
		require.NoError(t, err)
		assert.Len(t, refs, 2)
	})
}
