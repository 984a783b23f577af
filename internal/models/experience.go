package models

import (
	"time"
)

// Experience types mirror the kinds of engagements a portfolio lists.
const (
	ExperienceTypeJob        = "job"
	ExperienceTypeInternship = "internship"
	ExperienceTypeFreelance  = "freelance"
	ExperienceTypeProject    = "project"
	ExperienceTypeVolunteer  = "volunteer"
	ExperienceTypeOther      = "other"
)

// ValidExperienceType reports whether t is one of the known experience types.
func ValidExperienceType(t string) bool {
	switch t {
	case ExperienceTypeJob, ExperienceTypeInternship, ExperienceTypeFreelance,
		ExperienceTypeProject, ExperienceTypeVolunteer, ExperienceTypeOther:
		return true
	}
	return false
}

// Experience represents a job, internship or other engagement.
type Experience struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	Title          string               `gorm:"size:200;not null" json:"title"`
	Company        string               `gorm:"size:200" json:"company"`
	Location       string               `gorm:"size:200" json:"location"`
	ExperienceType string               `gorm:"size:20;default:job" json:"experience_type"`
	StartDate      time.Time            `gorm:"not null" json:"start_date"`
	EndDate        *time.Time           `json:"end_date,omitempty"`
	Description    string               `gorm:"type:text" json:"description"`
	IsCurrent      bool                 `gorm:"default:false" json:"is_current"`
	Links          []ExperienceLink     `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"links"`
	SkillRefs      []ExperienceSkillRef `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"skills"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ExperienceLink is an external reference owned by an experience.
type ExperienceLink struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ExperienceID uint   `gorm:"not null;index" json:"experience_id"`
	URL          string `gorm:"size:500;not null" json:"url"`
	Text         string `gorm:"size:200" json:"text"`
	Order        int    `gorm:"default:0" json:"order"`
}

// ExperienceSkillRef joins an experience to a catalog skill. Unique per pair.
type ExperienceSkillRef struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ExperienceID     uint           `gorm:"not null;uniqueIndex:idx_experience_skill" json:"-"`
	SkillReferenceID uint           `gorm:"not null;uniqueIndex:idx_experience_skill" json:"-"`
	SkillReference   SkillReference `gorm:"foreignKey:SkillReferenceID" json:"-"`
}

func (r ExperienceSkillRef) MarshalJSON() ([]byte, error) {
	return marshalSkillRef(r.SkillReferenceID, r.SkillReference)
}
