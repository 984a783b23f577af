// Package service contains the business logic orchestrating repositories,
// the reconcile core, and the blob store.
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

const (
	maxTitleLen   = 200
	maxContentLen = 10000
)

type PostService struct {
	db       *gorm.DB
	repo     repository.PostRepository
	blobs    blob.Store
	maxFiles int
}

type CreatePostInput struct {
	Title      string
	Content    string
	Links      reconcile.Field
	ImagesMeta reconcile.Field
	Uploads    []blob.Upload
}

type UpdatePostInput struct {
	PostID     uint
	Title      *string
	Content    *string
	Links      reconcile.Field
	ImagesMeta reconcile.Field
	Uploads    []blob.Upload
}

func NewPostService(db *gorm.DB, repo repository.PostRepository, blobs blob.Store, maxFiles int) *PostService {
	return &PostService{db: db, repo: repo, blobs: blobs, maxFiles: maxFiles}
}

func (s *PostService) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.create")
	defer span.End()

	errs := models.FieldErrors{}
	title := strings.TrimSpace(in.Title)
	validateTitle(errs, title)
	validateContent(errs, in.Content, true)
	s.validateUploadCount(errs, len(in.Uploads))

	// Posts parse links leniently: an unusable container leaves the
	// collection untouched instead of failing the request.
	links, err := reconcile.ParseLinks(in.Links)
	if err != nil {
		links = nil
	}

	if errs.HasErrors() {
		observability.ObserveReconcile("post", observability.OutcomeRejected)
		return nil, errs
	}

	if taken, err := s.repo.TitleTaken(ctx, title, 0); err != nil {
		return nil, models.NewInternalError(err)
	} else if taken {
		observability.ObserveReconcile("post", observability.OutcomeRejected)
		return nil, models.NewFieldError("title", "A blog post with this title already exists.")
	}

	images, err := s.saveUploads(ctx, in.Uploads, reconcile.ParseImagesMeta(in.ImagesMeta))
	if err != nil {
		observability.ObserveReconcile("post", observability.OutcomeRejected)
		return nil, err
	}

	post := &models.Post{Title: title, Content: in.Content}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(tx, &models.Post{}, title)
		if err != nil {
			return err
		}
		post.Slug = slug
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, post); err != nil {
			return err
		}
		if err := syncPostLinks(tx, post.ID, links); err != nil {
			return err
		}
		return appendPostImages(tx, post.ID, images)
	})
	if txErr != nil {
		s.discardBlobs(ctx, images)
		return nil, s.translatePostErr(txErr)
	}

	observability.ObserveReconcile("post", observability.OutcomeCommitted)
	return s.reload(ctx, post.ID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.update")
	defer span.End()

	existing, err := s.repo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	errs := models.FieldErrors{}
	title := existing.Title
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		validateTitle(errs, title)
	}
	content := existing.Content
	if in.Content != nil {
		content = *in.Content
		validateContent(errs, content, true)
	}
	s.validateUploadCount(errs, len(in.Uploads))

	links, linksSupplied := []reconcile.LinkItem(nil), false
	if in.Links.Supplied() {
		parsed, err := reconcile.ParseLinks(in.Links)
		if err == nil {
			links = parsed
			linksSupplied = true
		}
	}

	if errs.HasErrors() {
		observability.ObserveReconcile("post", observability.OutcomeRejected)
		return nil, errs
	}

	if in.Title != nil {
		if taken, err := s.repo.TitleTaken(ctx, title, existing.ID); err != nil {
			return nil, models.NewInternalError(err)
		} else if taken {
			observability.ObserveReconcile("post", observability.OutcomeRejected)
			return nil, models.NewFieldError("title", "A blog post with this title already exists.")
		}
	}

	images, err := s.saveUploads(ctx, in.Uploads, reconcile.ParseImagesMeta(in.ImagesMeta))
	if err != nil {
		observability.ObserveReconcile("post", observability.OutcomeRejected)
		return nil, err
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing.Title = title
		existing.Content = content
		existing.Images = nil
		existing.Links = nil
		if err := s.repo.WithTx(tx).Update(ctx, existing); err != nil {
			return err
		}
		if linksSupplied {
			if err := syncPostLinks(tx, existing.ID, links); err != nil {
				return err
			}
		}
		return appendPostImages(tx, existing.ID, images)
	})
	if txErr != nil {
		s.discardBlobs(ctx, images)
		return nil, s.translatePostErr(txErr)
	}

	observability.ObserveReconcile("post", observability.OutcomeCommitted)
	return s.reload(ctx, existing.ID)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	for _, img := range post.Images {
		s.deleteBlob(ctx, img.PublicID)
	}
	return nil
}

// Child item operations. Links are addressed through their parent so a link
// belonging to another post is indistinguishable from a missing one.

func (s *PostService) AddLink(ctx context.Context, postID uint, url, text string, order int) (*models.Link, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, models.NewFieldError("url", "URL is required.")
	}
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	link := &models.Link{PostID: postID, URL: url, Text: strings.TrimSpace(text), Order: order}
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, models.NewInternalError(err)
	}
	return link, nil
}

func (s *PostService) UpdateLink(ctx context.Context, postID, linkID uint, url, text *string, order *int) (*models.Link, error) {
	link, err := s.repo.GetLink(ctx, postID, linkID)
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

func (s *PostService) DeleteLink(ctx context.Context, postID, linkID uint) error {
	if err := s.repo.DeleteLink(ctx, postID, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Link", linkID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// AddImages stores new uploads against an existing post without touching
// anything else on it.
func (s *PostService) AddImages(ctx context.Context, postID uint, uploads []blob.Upload, meta reconcile.Field) (*models.Post, error) {
	errs := models.FieldErrors{}
	if len(uploads) == 0 {
		errs.Add("uploaded_images", "At least one image file is required.")
	}
	s.validateUploadCount(errs, len(uploads))
	if errs.HasErrors() {
		return nil, errs
	}

	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	images, err := s.saveUploads(ctx, uploads, reconcile.ParseImagesMeta(meta))
	if err != nil {
		return nil, err
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return appendPostImages(tx, postID, images)
	})
	if txErr != nil {
		s.discardBlobs(ctx, images)
		return nil, models.NewInternalError(txErr)
	}
	return s.reload(ctx, postID)
}

func (s *PostService) UpdateImage(ctx context.Context, postID, imageID uint, caption *string) (*models.Image, error) {
	image, err := s.repo.GetImage(ctx, postID, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", imageID)
		}
		return nil, models.NewInternalError(err)
	}
	if caption != nil {
		image.Caption = strings.TrimSpace(*caption)
	}
	if err := s.repo.SaveImage(ctx, image); err != nil {
		return nil, models.NewInternalError(err)
	}
	return image, nil
}

func (s *PostService) DeleteImage(ctx context.Context, postID, imageID uint) error {
	image, err := s.repo.GetImage(ctx, postID, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Image", imageID)
		}
		return models.NewInternalError(err)
	}
	if err := s.repo.DeleteImage(ctx, postID, imageID); err != nil {
		return models.NewInternalError(err)
	}
	s.deleteBlob(ctx, image.PublicID)
	return nil
}

func (s *PostService) validateUploadCount(errs models.FieldErrors, n int) {
	if s.maxFiles > 0 && n > s.maxFiles {
		errs.Add("uploaded_images", fmt.Sprintf("You can upload at most %d images per post.", s.maxFiles))
	}
}

// saveUploads persists blobs before the transaction opens and pairs them with
// positional captions. Any store rejection fails the whole batch and removes
// blobs already written.
func (s *PostService) saveUploads(ctx context.Context, uploads []blob.Upload, metas []reconcile.ImageMeta) ([]models.Image, error) {
	var images []models.Image
	for i, up := range uploads {
		stored, err := s.blobs.Save(ctx, up)
		if err != nil {
			s.discardBlobs(ctx, images)
			return nil, translateBlobErr("uploaded_images", up.Filename, err)
		}
		caption := ""
		if i < len(metas) {
			caption = metas[i].Caption
		}
		images = append(images, models.Image{
			PublicID: stored.PublicID,
			URL:      stored.URL,
			Caption:  caption,
		})
	}
	return images, nil
}

func (s *PostService) discardBlobs(ctx context.Context, images []models.Image) {
	for _, img := range images {
		s.deleteBlob(ctx, img.PublicID)
	}
}

func (s *PostService) deleteBlob(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.blobs.Delete(ctx, publicID); err != nil {
		observability.GlobalLogger.Warn("blob delete failed", "public_id", publicID, "error", err)
	}
}

func (s *PostService) translatePostErr(err error) error {
	observability.ObserveReconcile("post", observability.OutcomeFailed)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewFieldError("title", "A blog post with this title already exists.")
	}
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return models.NewInternalError(err)
}

func (s *PostService) reload(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func syncPostLinks(tx *gorm.DB, postID uint, items []reconcile.LinkItem) error {
	rows := make([]models.Link, len(items))
	for i, item := range items {
		rows[i] = models.Link{PostID: postID, URL: item.URL, Text: item.Text, Order: item.Order}
	}
	return reconcile.Sync(tx, reconcile.PostPolicies[reconcile.CollectionLinks], "post_id", postID, rows)
}

func appendPostImages(tx *gorm.DB, postID uint, images []models.Image) error {
	rows := make([]models.Image, len(images))
	for i, img := range images {
		img.PostID = postID
		rows[i] = img
	}
	return reconcile.Sync(tx, reconcile.PostPolicies[reconcile.CollectionImages], "post_id", postID, rows)
}

func validateTitle(errs models.FieldErrors, title string) {
	if title == "" {
		errs.Add("title", "Title is required.")
		return
	}
	if len(title) > maxTitleLen {
		errs.Add("title", fmt.Sprintf("Title cannot exceed %d characters.", maxTitleLen))
	}
}

func validateContent(errs models.FieldErrors, content string, required bool) {
	if strings.TrimSpace(content) == "" {
		if required {
			errs.Add("content", "Content is required.")
		}
		return
	}
	if len(content) > maxContentLen {
		errs.Add("content", fmt.Sprintf("Content cannot exceed %d characters.", maxContentLen))
	}
}

func translateBlobErr(field, filename string, err error) error {
	switch {
	case errors.Is(err, blob.ErrTooLarge):
		return models.NewFieldError(field, fmt.Sprintf("File %s is too large. Max 5MB.", filename))
	case errors.Is(err, blob.ErrUnsupportedType), errors.Is(err, blob.ErrNotImage):
		return models.NewFieldError(field, fmt.Sprintf("Unsupported file type for %s. Allowed: JPEG, PNG, WEBP.", filename))
	case errors.Is(err, blob.ErrEmptyFile):
		return models.NewFieldError(field, "Uploaded file is empty.")
	default:
		return models.NewInternalError(err)
	}
}

// uniqueSlug derives a slug from the title and suffixes a counter until it is
// free. model selects the table to probe.
func uniqueSlug(tx *gorm.DB, model interface{}, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(model).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
