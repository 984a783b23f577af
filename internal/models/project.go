package models

import (
	"time"
)

// Project represents a portfolio project with media, links and skill tags.
type Project struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"size:200;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	CreatedByID *uint             `gorm:"index" json:"created_by,omitempty"`
	Media       []ProjectMedia    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"media"`
	Links       []ProjectLink     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"links"`
	SkillRefs   []ProjectSkillRef `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"skills_list"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProjectMedia is a blob-backed media item owned by a project. Like post
// images, rows accumulate; removal is only via the per-item delete endpoint.
type ProjectMedia struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	PublicID  string `gorm:"size:255" json:"-"`
	URL       string `gorm:"size:500" json:"image"`
	Order     int    `gorm:"default:0" json:"order"`
}

// ProjectLink is an external reference owned by a project.
type ProjectLink struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	URL       string `gorm:"size:500;not null" json:"url"`
	Text      string `gorm:"size:200" json:"text"`
	Order     int    `gorm:"default:0" json:"order"`
}

// ProjectSkillRef joins a project to a catalog skill. Unique per pair.
type ProjectSkillRef struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProjectID        uint           `gorm:"not null;uniqueIndex:idx_project_skill" json:"-"`
	SkillReferenceID uint           `gorm:"not null;uniqueIndex:idx_project_skill" json:"-"`
	SkillReference   SkillReference `gorm:"foreignKey:SkillReferenceID" json:"-"`
}

// MarshalJSON flattens the joined catalog row into the shape clients expect:
// {"id": ..., "name": ..., "icon": ...}.
func (r ProjectSkillRef) MarshalJSON() ([]byte, error) {
	return marshalSkillRef(r.SkillReferenceID, r.SkillReference)
}
