package server

import (
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSkillReferences handles GET /api/skills/references
func (s *Server) GetSkillReferences(c *fiber.Ctx) error {
	refs, err := s.skillService.ListReferences(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(refs)
}

// CreateSkillReference handles POST /api/skills/references
func (s *Server) CreateSkillReference(c *fiber.Ctx) error {
	var req struct {
		Name   string `json:"name" form:"name"`
		IconID string `json:"icon_id" form:"icon_id"`
		Icon   string `json:"icon" form:"icon"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ref, err := s.skillService.CreateReference(c.Context(), service.CreateSkillReferenceInput{
		Name:   req.Name,
		IconID: req.IconID,
		Icon:   req.Icon,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// GetSkills handles GET /api/skills
func (s *Server) GetSkills(c *fiber.Ctx) error {
	skills, err := s.skillService.ListSkills(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(skills)
}

// CreateSkill handles POST /api/skills
func (s *Server) CreateSkill(c *fiber.Ctx) error {
	var req struct {
		ReferenceID uint `json:"reference_id" form:"reference_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	skill, err := s.skillService.CreateSkill(c.Context(), req.ReferenceID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(skill)
}

// DeleteSkill handles DELETE /api/skills/:id
func (s *Server) DeleteSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.skillService.DeleteSkill(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
