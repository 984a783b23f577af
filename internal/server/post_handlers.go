package server

import (
	"encoding/json"
	"strings"

	"atelier/internal/cache"
	"atelier/internal/models"
	"atelier/internal/reconcile"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	var envelope struct {
		Count   int64          `json:"count"`
		Results []*models.Post `json:"results"`
	}
	fetch := func() error {
		posts, total, err := s.postService.ListPosts(c.Context(), page.Limit, page.Offset)
		if err != nil {
			return err
		}
		envelope.Count = total
		envelope.Results = posts
		return nil
	}

	// Only the default first page is cached; deep pages are rare.
	var err error
	if page.Offset == 0 && page.Limit == 20 {
		err = cache.Aside(c.Context(), cache.PostsListKey(), &envelope, cache.ListTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(envelope)
}

// GetPost handles GET /api/posts/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	var post *models.Post
	err := cache.Aside(c.Context(), cache.PostKey(slug), &post, cache.PostTTL, func() error {
		fetched, err := s.postService.GetPost(c.Context(), slug)
		if err != nil {
			return err
		}
		post = fetched
		return nil
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts. Accepts multipart form data with
// optional uploaded_images files and JSON-encoded collection fields, or a
// plain JSON body.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()

	var in service.CreatePostInput
	if isJSONRequest(c) {
		var req struct {
			Title      string          `json:"title"`
			Content    string          `json:"content"`
			Links      json.RawMessage `json:"links_data"`
			ImagesMeta json.RawMessage `json:"images_meta"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in = service.CreatePostInput{
			Title:      req.Title,
			Content:    req.Content,
			Links:      reconcile.FieldFromRaw(req.Links),
			ImagesMeta: reconcile.FieldFromRaw(req.ImagesMeta),
		}
	} else {
		uploads, err := formUploads(c, "uploaded_images")
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid upload"))
		}
		in = service.CreatePostInput{
			Title:      formString(c, "title"),
			Content:    formString(c, "content"),
			Links:      formValue(c, "links_data"),
			ImagesMeta: formValue(c, "images_meta"),
			Uploads:    uploads,
		}
	}

	post, err := s.postService.CreatePost(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}

	in := service.UpdatePostInput{PostID: post.ID}
	if isJSONRequest(c) {
		var req struct {
			Title      *string         `json:"title"`
			Content    *string         `json:"content"`
			Links      json.RawMessage `json:"links_data"`
			ImagesMeta json.RawMessage `json:"images_meta"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.Links = reconcile.FieldFromRaw(req.Links)
		in.ImagesMeta = reconcile.FieldFromRaw(req.ImagesMeta)
	} else {
		uploads, err := formUploads(c, "uploaded_images")
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid upload"))
		}
		in.Title = formStringPtr(c, "title")
		in.Content = formStringPtr(c, "content")
		in.Links = formValue(c, "links_data")
		in.ImagesMeta = formValue(c, "images_meta")
		in.Uploads = uploads
	}

	updated, err := s.postService.UpdatePost(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, updated.Slug)
	return c.JSON(updated)
}

// DeletePost handles DELETE /api/posts/:slug
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := s.postService.DeletePost(ctx, post.ID); err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.SendStatus(fiber.StatusNoContent)
}

type linkPayload struct {
	URL   string `json:"url" form:"url"`
	Text  string `json:"text" form:"text"`
	Order int    `json:"order" form:"order"`
}

// AddPostLink handles POST /api/posts/:slug/links
func (s *Server) AddPostLink(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var req linkPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	link, err := s.postService.AddLink(ctx, post.ID, req.URL, req.Text, req.Order)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.Status(fiber.StatusCreated).JSON(link)
}

// UpdatePostLink handles PUT /api/posts/:slug/links/:linkId
func (s *Server) UpdatePostLink(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	linkID, err := s.parseID(c, "linkId")
	if err != nil {
		return nil
	}

	var req struct {
		URL   *string `json:"url" form:"url"`
		Text  *string `json:"text" form:"text"`
		Order *int    `json:"order" form:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	link, err := s.postService.UpdateLink(ctx, post.ID, linkID, req.URL, req.Text, req.Order)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.JSON(link)
}

// DeletePostLink handles DELETE /api/posts/:slug/links/:linkId
func (s *Server) DeletePostLink(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	linkID, err := s.parseID(c, "linkId")
	if err != nil {
		return nil
	}
	if err := s.postService.DeleteLink(ctx, post.ID, linkID); err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPostImages handles GET /api/posts/:slug/images
func (s *Server) GetPostImages(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.Context(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post.Images)
}

// GetPostLinks handles GET /api/posts/:slug/links
func (s *Server) GetPostLinks(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.Context(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post.Links)
}

// AddPostImages handles POST /api/posts/:slug/images. Multipart with
// uploaded_images files and an optional images_meta captions container.
func (s *Server) AddPostImages(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}

	uploads, err := formUploads(c, "uploaded_images")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid upload"))
	}

	updated, err := s.postService.AddImages(ctx, post.ID, uploads, formValue(c, "images_meta"))
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.Status(fiber.StatusCreated).JSON(updated.Images)
}

// UpdatePostImage handles PUT /api/posts/:slug/images/:imageId
func (s *Server) UpdatePostImage(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}

	var req struct {
		Caption *string `json:"caption" form:"caption"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	image, err := s.postService.UpdateImage(ctx, post.ID, imageID, req.Caption)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.JSON(image)
}

// DeletePostImage handles DELETE /api/posts/:slug/images/:imageId
func (s *Server) DeletePostImage(c *fiber.Ctx) error {
	ctx := c.Context()
	post, err := s.postService.GetPost(ctx, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}
	if err := s.postService.DeleteImage(ctx, post.ID, imageID); err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return c.SendStatus(fiber.StatusNoContent)
}

func isJSONRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}
