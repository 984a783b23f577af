package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"atelier/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed catalog.yml
var catalogYAML []byte

type catalogEntry struct {
	Name   string `yaml:"name"`
	IconID string `yaml:"icon_id"`
	Icon   string `yaml:"icon"`
}

type catalogFile struct {
	Skills []catalogEntry `yaml:"skills"`
}

// LoadSkillCatalog upserts the bundled skill catalog and returns all
// references, including ones that already existed.
func LoadSkillCatalog(db *gorm.DB) ([]models.SkillReference, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for _, entry := range file.Skills {
		if entry.Name == "" {
			continue
		}
		var existing models.SkillReference
		err := db.Where("LOWER(name) = LOWER(?)", entry.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = db.Create(&models.SkillReference{
				Name:   entry.Name,
				IconID: entry.IconID,
				Icon:   entry.Icon,
			}).Error
		}
		if err != nil {
			return nil, fmt.Errorf("upsert %q: %w", entry.Name, err)
		}
	}

	var refs []models.SkillReference
	if err := db.Order("name").Find(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}
