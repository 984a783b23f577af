package server

import (
	"atelier/internal/cache"
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetHero handles GET /api/hero
func (s *Server) GetHero(c *fiber.Ctx) error {
	var hero *models.HeroSection
	err := cache.Aside(c.Context(), cache.HeroKey(), &hero, cache.HeroTTL, func() error {
		fetched, err := s.coreService.GetHero(c.Context())
		if err != nil {
			return err
		}
		hero = fetched
		return nil
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(hero)
}

// UpdateHero handles PUT /api/hero. Multipart with an optional image file.
func (s *Server) UpdateHero(c *fiber.Ctx) error {
	image, err := formUpload(c, "image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid upload"))
	}

	in := service.UpdateHeroInput{
		Headline:    formString(c, "headline"),
		Subheadline: formString(c, "subheadline"),
		Instagram:   formString(c, "instagram"),
		LinkedIn:    formString(c, "linkedin"),
		GitHub:      formString(c, "github"),
		IsActive:    true,
		Image:       image,
	}
	if v := formStringPtr(c, "is_active"); v != nil {
		in.IsActive = parseBool(*v)
	}

	hero, err := s.coreService.UpdateHero(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	cache.Invalidate(c.Context(), cache.HeroKey())
	return c.JSON(hero)
}

// GetAbout handles GET /api/about
func (s *Server) GetAbout(c *fiber.Ctx) error {
	about, err := s.coreService.GetAbout(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(about)
}

// UpdateAbout handles PUT /api/about. Multipart with an optional CV file.
func (s *Server) UpdateAbout(c *fiber.Ctx) error {
	cv, err := formUpload(c, "cv")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid upload"))
	}

	about, err := s.coreService.UpdateAbout(c.Context(), service.UpdateAboutInput{
		Title:       formString(c, "title"),
		Description: formString(c, "description"),
		HiringEmail: formString(c, "hiring_email"),
		CV:          cv,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(about)
}

// SubmitContact handles POST /api/contact
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name" form:"name"`
		Email   string `json:"email" form:"email"`
		Subject string `json:"subject" form:"subject"`
		Message string `json:"message" form:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.coreService.SubmitContactMessage(c.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetContactMessages handles GET /api/contact
func (s *Server) GetContactMessages(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	messages, err := s.coreService.ListContactMessages(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// MarkContactRead handles POST /api/contact/:id/read
func (s *Server) MarkContactRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.coreService.MarkContactMessageRead(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteContactMessage handles DELETE /api/contact/:id
func (s *Server) DeleteContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.coreService.DeleteContactMessage(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
