package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"atelier/internal/blob"
	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/reconcile"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "linkId" -> "link ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// respondServiceError maps a service-layer error to an HTTP response.
// Validation failures render as the field-keyed 400 body; AppError codes map
// to their conventional statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		return models.RespondWithError(c, fiber.StatusBadRequest, fieldErrs)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
	}
	observability.RecordErrorInContext(c.UserContext(), err)
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// formValue reads a form field distinguishing "absent" from "present but
// empty". Absence matters: an update request that omits links_data leaves the
// stored links alone, while links_data=[] clears them.
func formValue(c *fiber.Ctx, name string) reconcile.Field {
	v, ok := rawFormValue(c, name)
	return reconcile.FieldFromForm(v, ok)
}

// formString reads a plain form field, returning "" when absent.
func formString(c *fiber.Ctx, name string) string {
	v, _ := rawFormValue(c, name)
	return v
}

// formStringPtr reads a plain form field, returning nil when absent so update
// handlers can tell "leave unchanged" from "set to empty".
func formStringPtr(c *fiber.Ctx, name string) *string {
	v, ok := rawFormValue(c, name)
	if !ok {
		return nil
	}
	return &v
}

func rawFormValue(c *fiber.Ctx, name string) (string, bool) {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		if vals, ok := form.Value[name]; ok && len(vals) > 0 {
			return vals[0], true
		}
		return "", false
	}
	args := c.Request().PostArgs()
	if args.Has(name) {
		return string(args.Peek(name)), true
	}
	return "", false
}

// formUploads collects the uploaded files under the given multipart key.
func formUploads(c *fiber.Ctx, name string) ([]blob.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	files := form.File[name]
	uploads := make([]blob.Upload, 0, len(files))
	for _, fh := range files {
		content, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, blob.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return uploads, nil
}

// formUpload reads at most one uploaded file under the given key.
func formUpload(c *fiber.Ctx, name string) (*blob.Upload, error) {
	uploads, err := formUploads(c, name)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, nil
	}
	return &uploads[0], nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
