package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pastDate returns a timestamp up to maxDays in the past.
func (f *Factory) pastDate(maxDays int) time.Time {
	return time.Now().AddDate(0, 0, -f.rng.Intn(maxDays)).
		Add(-time.Duration(f.rng.Intn(24)) * time.Hour)
}

// CreatePost persists a post with a couple of links.
func (f *Factory) CreatePost() (*models.Post, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(4), ".")
	post := &models.Post{
		Title:     title,
		Slug:      service.Slugify(title) + "-" + gofakeit.LetterN(4),
		Content:   gofakeit.Paragraph(2, 4, 8, "\n\n"),
		CreatedAt: f.pastDate(90),
		Links: []models.Link{
			{URL: gofakeit.URL(), Text: gofakeit.DomainName(), Order: 0},
			{URL: gofakeit.URL(), Text: gofakeit.DomainName(), Order: 1},
		},
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateProject persists a project tagged with a random subset of the catalog.
func (f *Factory) CreateProject(refs []models.SkillReference) (*models.Project, error) {
	project := &models.Project{
		Title:       gofakeit.AppName(),
		Description: gofakeit.Paragraph(1, 3, 10, "\n"),
		Links: []models.ProjectLink{
			{URL: gofakeit.URL(), Text: "Repository", Order: 0},
		},
		Media: []models.ProjectMedia{
			{URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()), Order: 0},
		},
	}
	for _, ref := range f.pickRefs(refs, 3) {
		project.SkillRefs = append(project.SkillRefs, models.ProjectSkillRef{
			SkillReferenceID: ref.ID,
		})
	}
	if err := f.db.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// CreateExperience persists a dated engagement; roughly one in three is
// marked current.
func (f *Factory) CreateExperience(refs []models.SkillReference) (*models.Experience, error) {
	start := f.pastDate(365 * 5)
	experience := &models.Experience{
		Title:          gofakeit.JobTitle(),
		Company:        gofakeit.Company(),
		Location:       gofakeit.City(),
		ExperienceType: models.ExperienceTypeJob,
		StartDate:      start,
		Description:    gofakeit.Paragraph(1, 2, 12, "\n"),
	}
	if f.rng.Intn(3) == 0 {
		experience.IsCurrent = true
	} else {
		end := start.AddDate(0, 6+f.rng.Intn(30), 0)
		if end.After(time.Now()) {
			end = time.Now()
		}
		experience.EndDate = &end
	}
	for _, ref := range f.pickRefs(refs, 2) {
		experience.SkillRefs = append(experience.SkillRefs, models.ExperienceSkillRef{
			SkillReferenceID: ref.ID,
		})
	}
	if err := f.db.Create(experience).Error; err != nil {
		return nil, err
	}
	return experience, nil
}

// CreateHero upserts the hero singleton.
func (f *Factory) CreateHero() error {
	var count int64
	if err := f.db.Model(&models.HeroSection{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return f.db.Create(&models.HeroSection{
		Headline:    fmt.Sprintf("Hi, I'm %s.", gofakeit.FirstName()),
		Subheadline: gofakeit.JobTitle() + " building things for the web.",
		GitHub:      "https://github.com/" + gofakeit.Username(),
		LinkedIn:    "https://linkedin.com/in/" + gofakeit.Username(),
		IsActive:    true,
	}).Error
}

// CreateAbout upserts the about singleton.
func (f *Factory) CreateAbout() error {
	var count int64
	if err := f.db.Model(&models.About{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return f.db.Create(&models.About{
		Title:       "About",
		Description: gofakeit.Paragraph(2, 3, 10, "\n\n"),
		HiringEmail: gofakeit.Email(),
	}).Error
}

// CreateContactMessage persists an unread inbound message.
func (f *Factory) CreateContactMessage() (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:      gofakeit.Name(),
		Email:     gofakeit.Email(),
		Subject:   strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Message:   gofakeit.Paragraph(1, 2, 10, "\n"),
		CreatedAt: f.pastDate(30),
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) pickRefs(refs []models.SkillReference, max int) []models.SkillReference {
	if len(refs) == 0 || max <= 0 {
		return nil
	}
	shuffled := make([]models.SkillReference, len(refs))
	copy(shuffled, refs)
	f.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := 1 + f.rng.Intn(max)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
