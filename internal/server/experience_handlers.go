package server

import (
	"encoding/json"
	"strconv"
	"time"

	"atelier/internal/models"
	"atelier/internal/reconcile"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// GetExperiences handles GET /api/experiences
func (s *Server) GetExperiences(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	experiences, total, err := s.experienceService.ListExperiences(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"count":   total,
		"results": experiences,
	})
}

// GetExperience handles GET /api/experiences/:id
func (s *Server) GetExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	experience, err := s.experienceService.GetExperience(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(experience)
}

// CreateExperience handles POST /api/experiences
func (s *Server) CreateExperience(c *fiber.Ctx) error {
	in, errs := s.experienceCreateInput(c)
	if errs.HasErrors() {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	experience, err := s.experienceService.CreateExperience(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(experience)
}

// UpdateExperience handles PUT /api/experiences/:id
func (s *Server) UpdateExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in, errs := s.experienceUpdateInput(c, id)
	if errs.HasErrors() {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	experience, err := s.experienceService.UpdateExperience(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(experience)
}

// DeleteExperience handles DELETE /api/experiences/:id
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.experienceService.DeleteExperience(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddExperienceLink handles POST /api/experiences/:id/links
func (s *Server) AddExperienceLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req linkPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	link, err := s.experienceService.AddLink(c.Context(), id, req.URL, req.Text, req.Order)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// DeleteExperienceLink handles DELETE /api/experiences/:id/links/:linkId
func (s *Server) DeleteExperienceLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	linkID, err := s.parseID(c, "linkId")
	if err != nil {
		return nil
	}
	if err := s.experienceService.DeleteLink(c.Context(), id, linkID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) experienceCreateInput(c *fiber.Ctx) (service.CreateExperienceInput, models.FieldErrors) {
	errs := models.FieldErrors{}

	if isJSONRequest(c) {
		var req struct {
			Title          string          `json:"title"`
			Company        string          `json:"company"`
			Location       string          `json:"location"`
			ExperienceType string          `json:"experience_type"`
			StartDate      string          `json:"start_date"`
			EndDate        *string         `json:"end_date"`
			Description    string          `json:"description"`
			IsCurrent      bool            `json:"is_current"`
			Links          json.RawMessage `json:"links_data"`
			Skills         json.RawMessage `json:"skills_data"`
		}
		if err := c.BodyParser(&req); err != nil {
			errs.Add(models.NonFieldErrors, "Invalid request body")
			return service.CreateExperienceInput{}, errs
		}
		in := service.CreateExperienceInput{
			Title:          req.Title,
			Company:        req.Company,
			Location:       req.Location,
			ExperienceType: req.ExperienceType,
			Description:    req.Description,
			IsCurrent:      req.IsCurrent,
			Links:          reconcile.FieldFromRaw(req.Links),
			Skills:         reconcile.FieldFromRaw(req.Skills),
		}
		in.StartDate = parseDate(errs, "start_date", req.StartDate)
		if req.EndDate != nil && *req.EndDate != "" {
			end := parseDate(errs, "end_date", *req.EndDate)
			in.EndDate = &end
		}
		return in, errs
	}

	in := service.CreateExperienceInput{
		Title:          formString(c, "title"),
		Company:        formString(c, "company"),
		Location:       formString(c, "location"),
		ExperienceType: formString(c, "experience_type"),
		Description:    formString(c, "description"),
		IsCurrent:      parseBool(formString(c, "is_current")),
		Links:          formValue(c, "links_data"),
		Skills:         formValue(c, "skills_data"),
	}
	if v := formString(c, "start_date"); v != "" {
		in.StartDate = parseDate(errs, "start_date", v)
	}
	if v := formString(c, "end_date"); v != "" {
		end := parseDate(errs, "end_date", v)
		in.EndDate = &end
	}
	return in, errs
}

func (s *Server) experienceUpdateInput(c *fiber.Ctx, id uint) (service.UpdateExperienceInput, models.FieldErrors) {
	errs := models.FieldErrors{}
	in := service.UpdateExperienceInput{ExperienceID: id}

	if isJSONRequest(c) {
		var req struct {
			Title          *string          `json:"title"`
			Company        *string          `json:"company"`
			Location       *string          `json:"location"`
			ExperienceType *string          `json:"experience_type"`
			StartDate      *string          `json:"start_date"`
			EndDate        json.RawMessage  `json:"end_date"`
			Description    *string          `json:"description"`
			IsCurrent      *bool            `json:"is_current"`
			Links          json.RawMessage  `json:"links_data"`
			Skills         json.RawMessage  `json:"skills_data"`
		}
		if err := c.BodyParser(&req); err != nil {
			errs.Add(models.NonFieldErrors, "Invalid request body")
			return in, errs
		}
		in.Title = req.Title
		in.Company = req.Company
		in.Location = req.Location
		in.ExperienceType = req.ExperienceType
		in.Description = req.Description
		in.IsCurrent = req.IsCurrent
		in.Links = reconcile.FieldFromRaw(req.Links)
		in.Skills = reconcile.FieldFromRaw(req.Skills)
		if req.StartDate != nil {
			start := parseDate(errs, "start_date", *req.StartDate)
			in.StartDate = &start
		}
		// end_date distinguishes absent (leave alone), null (clear), and a value.
		if len(req.EndDate) > 0 {
			in.EndDateSet = true
			var v *string
			if err := json.Unmarshal(req.EndDate, &v); err != nil {
				errs.Add("end_date", "Invalid date format. Use YYYY-MM-DD.")
			} else if v != nil && *v != "" {
				end := parseDate(errs, "end_date", *v)
				in.EndDate = &end
			}
		}
		return in, errs
	}

	in.Title = formStringPtr(c, "title")
	in.Company = formStringPtr(c, "company")
	in.Location = formStringPtr(c, "location")
	in.ExperienceType = formStringPtr(c, "experience_type")
	in.Description = formStringPtr(c, "description")
	in.Links = formValue(c, "links_data")
	in.Skills = formValue(c, "skills_data")
	if v := formStringPtr(c, "is_current"); v != nil {
		b := parseBool(*v)
		in.IsCurrent = &b
	}
	if v := formStringPtr(c, "start_date"); v != nil {
		start := parseDate(errs, "start_date", *v)
		in.StartDate = &start
	}
	if v := formStringPtr(c, "end_date"); v != nil {
		in.EndDateSet = true
		if *v != "" {
			end := parseDate(errs, "end_date", *v)
			in.EndDate = &end
		}
	}
	return in, errs
}

func parseDate(errs models.FieldErrors, field, value string) time.Time {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		errs.Add(field, "Invalid date format. Use YYYY-MM-DD.")
		return time.Time{}
	}
	return t
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
