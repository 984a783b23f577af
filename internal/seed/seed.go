// Package seed fills the database with demo portfolio content for
// development and testing.
package seed

import (
	"fmt"
	"log"

	"atelier/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumPosts       int
	NumProjects    int
	NumExperiences int
	ShouldClean    bool
}

// Run seeds the database: the skill catalog first (tags reference it), then
// the singletons, then dated content.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumPosts <= 0 {
		opts.NumPosts = 8
	}
	if opts.NumProjects <= 0 {
		opts.NumProjects = 4
	}
	if opts.NumExperiences <= 0 {
		opts.NumExperiences = 3
	}

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	refs, err := LoadSkillCatalog(db)
	if err != nil {
		return fmt.Errorf("skill catalog: %w", err)
	}
	log.Printf("seeded %d skill references", len(refs))

	f := NewFactory(db)

	if err := f.CreateHero(); err != nil {
		return fmt.Errorf("hero: %w", err)
	}
	if err := f.CreateAbout(); err != nil {
		return fmt.Errorf("about: %w", err)
	}

	for i := 0; i < opts.NumPosts; i++ {
		if _, err := f.CreatePost(); err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
	}
	for i := 0; i < opts.NumProjects; i++ {
		if _, err := f.CreateProject(refs); err != nil {
			return fmt.Errorf("project %d: %w", i, err)
		}
	}
	for i := 0; i < opts.NumExperiences; i++ {
		if _, err := f.CreateExperience(refs); err != nil {
			return fmt.Errorf("experience %d: %w", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := f.CreateContactMessage(); err != nil {
			return fmt.Errorf("contact message %d: %w", i, err)
		}
	}

	log.Printf("seeded %d posts, %d projects, %d experiences",
		opts.NumPosts, opts.NumProjects, opts.NumExperiences)
	return nil
}

// CreateSuperuser creates (or reuses) a superuser account with the given
// credentials.
func CreateSuperuser(db *gorm.DB, username, email, password string) (*models.User, error) {
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		IsSuperuser: true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Clean removes all seeded content. Child tables first; SQLite has no
// cascading deletes for unscoped batch deletes.
func Clean(db *gorm.DB) error {
	ordered := []interface{}{
		&models.Link{},
		&models.Image{},
		&models.ProjectLink{},
		&models.ProjectMedia{},
		&models.ProjectSkillRef{},
		&models.ExperienceLink{},
		&models.ExperienceSkillRef{},
		&models.Skill{},
		&models.Post{},
		&models.Project{},
		&models.Experience{},
		&models.SkillReference{},
		&models.ContactMessage{},
		&models.HeroSection{},
		&models.About{},
	}
	for _, model := range ordered {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
