package models

import (
	"encoding/json"
)

// SkillReference is the global catalog of known skills (e.g. Go, React).
// Rows are created on demand when a reconciliation request names a skill that
// is not yet in the catalog. Name is unique; the storage constraint is the
// final arbiter when concurrent requests create the same name.
type SkillReference struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	IconID string `gorm:"size:100" json:"id_icon,omitempty"`
	Icon   string `gorm:"size:500" json:"icon"`
}

// Skill is a portfolio-level entry pointing at one catalog reference. At most
// one entry per reference.
type Skill struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ReferenceID uint           `gorm:"not null;uniqueIndex" json:"-"`
	Reference   SkillReference `gorm:"foreignKey:ReferenceID" json:"reference"`
}

// skillRefView is the wire shape shared by project and experience skill tags.
type skillRefView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func marshalSkillRef(id uint, ref SkillReference) ([]byte, error) {
	return json.Marshal(skillRefView{ID: id, Name: ref.Name, Icon: ref.Icon})
}
