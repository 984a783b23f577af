package database

import "atelier/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Image{},
		&models.Link{},
		&models.Project{},
		&models.ProjectMedia{},
		&models.ProjectLink{},
		&models.ProjectSkillRef{},
		&models.Experience{},
		&models.ExperienceLink{},
		&models.ExperienceSkillRef{},
		&models.SkillReference{},
		&models.Skill{},
		&models.HeroSection{},
		&models.About{},
		&models.ContactMessage{},
	}
}
