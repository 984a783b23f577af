package server

import (
	"encoding/json"

	"atelier/internal/models"
	"atelier/internal/reconcile"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProjects handles GET /api/projects
func (s *Server) GetProjects(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	projects, total, err := s.projectService.ListProjects(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"count":   total,
		"results": projects,
	})
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projectService.GetProject(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	ctx := c.Context()

	var in service.CreateProjectInput
	if isJSONRequest(c) {
		var req struct {
			Title       string          `json:"title"`
			Description string          `json:"description"`
			Links       json.RawMessage `json:"links_data"`
			Skills      json.RawMessage `json:"skills"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in = service.CreateProjectInput{
			Title:       req.Title,
			Description: req.Description,
			Links:       reconcile.FieldFromRaw(req.Links),
			Skills:      reconcile.FieldFromRaw(req.Skills),
		}
	} else {
		uploads, err := formUploads(c, "media_files")
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid upload"))
		}
		in = service.CreateProjectInput{
			Title:       formString(c, "title"),
			Description: formString(c, "description"),
			Links:       formValue(c, "links_data"),
			Skills:      formValue(c, "skills"),
			Uploads:     uploads,
		}
	}

	if userID, ok := c.Locals("userID").(uint); ok {
		in.CreatedByID = &userID
	}

	project, err := s.projectService.CreateProject(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := service.UpdateProjectInput{ProjectID: id}
	if isJSONRequest(c) {
		var req struct {
			Title       *string         `json:"title"`
			Description *string         `json:"description"`
			Links       json.RawMessage `json:"links_data"`
			Skills      json.RawMessage `json:"skills"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Description = req.Description
		in.Links = reconcile.FieldFromRaw(req.Links)
		in.Skills = reconcile.FieldFromRaw(req.Skills)
	} else {
		uploads, err := formUploads(c, "media_files")
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid upload"))
		}
		in.Title = formStringPtr(c, "title")
		in.Description = formStringPtr(c, "description")
		in.Links = formValue(c, "links_data")
		in.Skills = formValue(c, "skills")
		in.Uploads = uploads
	}

	project, err := s.projectService.UpdateProject(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.projectService.DeleteProject(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProjectLinks handles GET /api/projects/:id/links
func (s *Server) GetProjectLinks(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projectService.GetProject(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project.Links)
}

// GetProjectMedia handles GET /api/projects/:id/media
func (s *Server) GetProjectMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projectService.GetProject(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project.Media)
}

// GetProjectSkills handles GET /api/projects/:id/skills
func (s *Server) GetProjectSkills(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projectService.GetProject(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project.SkillRefs)
}

// AddProjectLink handles POST /api/projects/:id/links
func (s *Server) AddProjectLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req linkPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	link, err := s.projectService.AddLink(c.Context(), id, req.URL, req.Text, req.Order)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// UpdateProjectLink handles PUT /api/projects/:id/links/:linkId
func (s *Server) UpdateProjectLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
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

	link, err := s.projectService.UpdateLink(c.Context(), id, linkID, req.URL, req.Text, req.Order)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(link)
}

// DeleteProjectLink handles DELETE /api/projects/:id/links/:linkId
func (s *Server) DeleteProjectLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	linkID, err := s.parseID(c, "linkId")
	if err != nil {
		return nil
	}
	if err := s.projectService.DeleteLink(c.Context(), id, linkID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddProjectMedia handles POST /api/projects/:id/media. Multipart with
// media_files file parts.
func (s *Server) AddProjectMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	uploads, err := formUploads(c, "media_files")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid upload"))
	}

	project, err := s.projectService.AddMedia(c.Context(), id, uploads)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project.Media)
}

// UpdateProjectMedia handles PUT /api/projects/:id/media/:mediaId
func (s *Server) UpdateProjectMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	mediaID, err := s.parseID(c, "mediaId")
	if err != nil {
		return nil
	}

	var req struct {
		Order *int `json:"order" form:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	media, err := s.projectService.UpdateMedia(c.Context(), id, mediaID, req.Order)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(media)
}

// DeleteProjectMedia handles DELETE /api/projects/:id/media/:mediaId
func (s *Server) DeleteProjectMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	mediaID, err := s.parseID(c, "mediaId")
	if err != nil {
		return nil
	}
	if err := s.projectService.DeleteMedia(c.Context(), id, mediaID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddProjectSkill handles POST /api/projects/:id/skills
func (s *Server) AddProjectSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ReferenceID uint `json:"reference_id" form:"reference_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.AddSkill(c.Context(), id, req.ReferenceID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project.SkillRefs)
}

// DeleteProjectSkill handles DELETE /api/projects/:id/skills/:refId.
// Unlinks the tag from the project; the catalog entry survives.
func (s *Server) DeleteProjectSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	refID, err := s.parseID(c, "refId")
	if err != nil {
		return nil
	}
	if err := s.projectService.DeleteSkill(c.Context(), id, refID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
