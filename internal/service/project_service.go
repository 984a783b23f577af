package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"atelier/internal/blob"
	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/reconcile"
	"atelier/internal/repository"

	"gorm.io/gorm"
)

type ProjectService struct {
	db       *gorm.DB
	repo     repository.ProjectRepository
	blobs    blob.Store
	maxFiles int
}

type CreateProjectInput struct {
	Title       string
	Description string
	CreatedByID *uint
	Links       reconcile.Field
	Skills      reconcile.Field
	Uploads     []blob.Upload
}

type UpdateProjectInput struct {
	ProjectID   uint
	Title       *string
	Description *string
	Links       reconcile.Field
	Skills      reconcile.Field
	Uploads     []blob.Upload
}

func NewProjectService(db *gorm.DB, repo repository.ProjectRepository, blobs blob.Store, maxFiles int) *ProjectService {
	return &ProjectService{db: db, repo: repo, blobs: blobs, maxFiles: maxFiles}
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, limit, offset int) ([]*models.Project, int64, error) {
	projects, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return projects, total, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	span, ctx := observability.NewSpan(ctx, "project.create")
	defer span.End()

	errs := models.FieldErrors{}
	title := strings.TrimSpace(in.Title)
	validateTitle(errs, title)
	validateContentField(errs, "description", in.Description)
	if s.maxFiles > 0 && len(in.Uploads) > s.maxFiles {
		errs.Add("media_files", fmt.Sprintf("You can upload at most %d images per project.", s.maxFiles))
	}

	// Projects parse both collections strictly.
	links, tags, ok := parseStrictCollections(errs, in.Links, in.Skills, "skills")
	if errs.HasErrors() || !ok {
		observability.ObserveReconcile("project", observability.OutcomeRejected)
		return nil, errs
	}

	media, err := s.saveMedia(ctx, in.Uploads)
	if err != nil {
		observability.ObserveReconcile("project", observability.OutcomeRejected)
		return nil, err
	}

	project := &models.Project{Title: title, Description: in.Description, CreatedByID: in.CreatedByID}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, project); err != nil {
			return err
		}
		if err := syncProjectLinks(tx, project.ID, links); err != nil {
			return err
		}
		if tags != nil {
			if err := syncProjectSkills(tx, project.ID, tags); err != nil {
				return err
			}
		}
		return appendProjectMedia(tx, project.ID, media)
	})
	if txErr != nil {
		s.discardMedia(ctx, media)
		return nil, s.translateProjectErr(txErr)
	}

	observability.ObserveReconcile("project", observability.OutcomeCommitted)
	return s.reload(ctx, project.ID)
}

func (s *ProjectService) UpdateProject(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	span, ctx := observability.NewSpan(ctx, "project.update")
	defer span.End()

	existing, err := s.repo.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", in.ProjectID)
		}
		return nil, models.NewInternalError(err)
	}

	errs := models.FieldErrors{}
	title := existing.Title
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		validateTitle(errs, title)
	}
	description := existing.Description
	if in.Description != nil {
		description = *in.Description
		validateContentField(errs, "description", description)
	}
	if s.maxFiles > 0 && len(in.Uploads) > s.maxFiles {
		errs.Add("media_files", fmt.Sprintf("You can upload at most %d images per project.", s.maxFiles))
	}

	links, tags, ok := parseStrictCollections(errs, in.Links, in.Skills, "skills")
	if errs.HasErrors() || !ok {
		observability.ObserveReconcile("project", observability.OutcomeRejected)
		return nil, errs
	}

	media, err := s.saveMedia(ctx, in.Uploads)
	if err != nil {
		observability.ObserveReconcile("project", observability.OutcomeRejected)
		return nil, err
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing.Title = title
		existing.Description = description
		existing.Media = nil
		existing.Links = nil
		existing.SkillRefs = nil
		if err := s.repo.WithTx(tx).Update(ctx, existing); err != nil {
			return err
		}
		if in.Links.Supplied() {
			if err := syncProjectLinks(tx, existing.ID, links); err != nil {
				return err
			}
		}
		if in.Skills.Supplied() {
			if err := syncProjectSkills(tx, existing.ID, tags); err != nil {
				return err
			}
		}
		return appendProjectMedia(tx, existing.ID, media)
	})
	if txErr != nil {
		s.discardMedia(ctx, media)
		return nil, s.translateProjectErr(txErr)
	}

	observability.ObserveReconcile("project", observability.OutcomeCommitted)
	return s.reload(ctx, existing.ID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Project", id)
		}
		return models.NewInternalError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	for _, m := range project.Media {
		s.deleteBlob(ctx, m.PublicID)
	}
	return nil
}

func (s *ProjectService) AddLink(ctx context.Context, projectID uint, url, text string, order int) (*models.ProjectLink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, models.NewFieldError("url", "URL is required.")
	}
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", projectID)
		}
		return nil, models.NewInternalError(err)
	}
	link := &models.ProjectLink{ProjectID: projectID, URL: url, Text: strings.TrimSpace(text), Order: order}
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, models.NewInternalError(err)
	}
	return link, nil
}

func (s *ProjectService) UpdateLink(ctx context.Context, projectID, linkID uint, url, text *string, order *int) (*models.ProjectLink, error) {
	link, err := s.repo.GetLink(ctx, projectID, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Link", linkID)
		}
		return nil, models.NewInternalError(err)
	}
	if url != nil {
		trimmed := strings.TrimSpace(*url)
		if trimmed == "" {
			return nil, models.NewFieldError("url", "URL is required.")
		}
		link.URL = trimmed
	}
	if text != nil {
		link.Text = strings.TrimSpace(*text)
	}
	if order != nil {
		link.Order = *order
	}
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, models.NewInternalError(err)
	}
	return link, nil
}

func (s *ProjectService) DeleteLink(ctx context.Context, projectID, linkID uint) error {
	if err := s.repo.DeleteLink(ctx, projectID, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Link", linkID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// AddMedia stores new uploads against an existing project without touching
// anything else on it.
func (s *ProjectService) AddMedia(ctx context.Context, projectID uint, uploads []blob.Upload) (*models.Project, error) {
	errs := models.FieldErrors{}
	if len(uploads) == 0 {
		errs.Add("media_files", "At least one media file is required.")
	}
	if s.maxFiles > 0 && len(uploads) > s.maxFiles {
		errs.Add("media_files", fmt.Sprintf("You can upload at most %d images per project.", s.maxFiles))
	}
	if errs.HasErrors() {
		return nil, errs
	}

	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", projectID)
		}
		return nil, models.NewInternalError(err)
	}

	media, err := s.saveMedia(ctx, uploads)
	if err != nil {
		return nil, err
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return appendProjectMedia(tx, projectID, media)
	})
	if txErr != nil {
		s.discardMedia(ctx, media)
		return nil, models.NewInternalError(txErr)
	}
	return s.reload(ctx, projectID)
}

func (s *ProjectService) UpdateMedia(ctx context.Context, projectID, mediaID uint, order *int) (*models.ProjectMedia, error) {
	media, err := s.repo.GetMedia(ctx, projectID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Media", mediaID)
		}
		return nil, models.NewInternalError(err)
	}
	if order != nil {
		media.Order = *order
	}
	if err := s.repo.SaveMedia(ctx, media); err != nil {
		return nil, models.NewInternalError(err)
	}
	return media, nil
}

func (s *ProjectService) DeleteMedia(ctx context.Context, projectID, mediaID uint) error {
	media, err := s.repo.GetMedia(ctx, projectID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Media", mediaID)
		}
		return models.NewInternalError(err)
	}
	if err := s.repo.DeleteMedia(ctx, projectID, mediaID); err != nil {
		return models.NewInternalError(err)
	}
	s.deleteBlob(ctx, media.PublicID)
	return nil
}

// AddSkill links one catalog reference to the project. The same reference
// can only be linked once per project.
func (s *ProjectService) AddSkill(ctx context.Context, projectID, refID uint) (*models.Project, error) {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", projectID)
		}
		return nil, models.NewInternalError(err)
	}

	var ref models.SkillReference
	if err := s.db.WithContext(ctx).First(&ref, refID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewFieldError("skills",
				fmt.Sprintf("The following skill IDs do not exist: %d", refID))
		}
		return nil, models.NewInternalError(err)
	}

	err := s.repo.AddSkillRef(ctx, &models.ProjectSkillRef{ProjectID: projectID, SkillReferenceID: refID})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewFieldError("skills", "This skill is already linked to the project.")
		}
		return nil, models.NewInternalError(err)
	}
	return s.reload(ctx, projectID)
}

func (s *ProjectService) DeleteSkill(ctx context.Context, projectID, refID uint) error {
	if err := s.repo.DeleteSkillRef(ctx, projectID, refID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Skill", refID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *ProjectService) saveMedia(ctx context.Context, uploads []blob.Upload) ([]models.ProjectMedia, error) {
	var media []models.ProjectMedia
	for i, up := range uploads {
		stored, err := s.blobs.Save(ctx, up)
		if err != nil {
			s.discardMedia(ctx, media)
			return nil, translateBlobErr("media_files", up.Filename, err)
		}
		media = append(media, models.ProjectMedia{
			PublicID: stored.PublicID,
			URL:      stored.URL,
			Order:    i,
		})
	}
	return media, nil
}

func (s *ProjectService) discardMedia(ctx context.Context, media []models.ProjectMedia) {
	for _, m := range media {
		s.deleteBlob(ctx, m.PublicID)
	}
}

func (s *ProjectService) deleteBlob(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.blobs.Delete(ctx, publicID); err != nil {
		observability.GlobalLogger.Warn("blob delete failed", "public_id", publicID, "error", err)
	}
}

func (s *ProjectService) translateProjectErr(err error) error {
	observability.ObserveReconcile("project", observability.OutcomeFailed)
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewFieldError("skills", "A skill with this name already exists.")
	}
	return models.NewInternalError(err)
}

func (s *ProjectService) reload(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return project, nil
}

// parseStrictCollections normalizes the links and skills fields with strict
// container handling: anything unusable rejects the whole request. errors on
// the skills field are keyed by skillsKey, which differs per entity.
func parseStrictCollections(errs models.FieldErrors, linksField, skillsField reconcile.Field, skillsKey string) ([]reconcile.LinkItem, []reconcile.TagInput, bool) {
	ok := true

	var links []reconcile.LinkItem
	if linksField.Supplied() {
		parsed, err := reconcile.ParseLinks(linksField)
		if err != nil {
			errs.Add("links_data", "links_data must be a JSON array of objects")
			ok = false
		} else {
			links = parsed
		}
	}

	var tags []reconcile.TagInput
	if skillsField.Supplied() {
		parsed, err := reconcile.ParseTags(skillsField)
		if err != nil {
			errs.Add(skillsKey, err.Error())
			ok = false
		} else {
			tags = parsed
		}
	}

	return links, tags, ok
}

func syncProjectLinks(tx *gorm.DB, projectID uint, items []reconcile.LinkItem) error {
	rows := make([]models.ProjectLink, len(items))
	for i, item := range items {
		rows[i] = models.ProjectLink{ProjectID: projectID, URL: item.URL, Text: item.Text, Order: item.Order}
	}
	return reconcile.Sync(tx, reconcile.ProjectPolicies[reconcile.CollectionLinks], "project_id", projectID, rows)
}

// syncProjectSkills resolves the tag batch against the catalog and replaces
// the project's skill joins. Duplicate joins collapse silently.
func syncProjectSkills(tx *gorm.DB, projectID uint, tags []reconcile.TagInput) error {
	refs, err := reconcile.ResolveTags(tx, "skills", tags)
	if err != nil {
		return err
	}
	seen := make(map[uint]struct{}, len(refs))
	rows := make([]models.ProjectSkillRef, 0, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		rows = append(rows, models.ProjectSkillRef{ProjectID: projectID, SkillReferenceID: ref.ID})
	}
	return reconcile.Sync(tx, reconcile.ProjectPolicies[reconcile.CollectionSkills], "project_id", projectID, rows)
}

func appendProjectMedia(tx *gorm.DB, projectID uint, media []models.ProjectMedia) error {
	rows := make([]models.ProjectMedia, len(media))
	for i, m := range media {
		m.ProjectID = projectID
		rows[i] = m
	}
	return reconcile.Sync(tx, reconcile.ProjectPolicies[reconcile.CollectionMedia], "project_id", projectID, rows)
}

func validateContentField(errs models.FieldErrors, field, value string) {
	if len(value) > maxContentLen {
		errs.Add(field, fmt.Sprintf("Description cannot exceed %d characters.", maxContentLen))
	}
}
