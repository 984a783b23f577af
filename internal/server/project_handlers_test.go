package server

import (
	"net/http"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectHandler(t *testing.T) {
	t.Run("multipart with skills and media", func(t *testing.T) {
		app, _, store, db := newTestApp(t)

		req := multipartRequest(t, http.MethodPost, "/api/projects", map[string]string{
			"title":       "Portfolio Site",
			"description": "The site itself.",
			"links_data":  `[{"url":"http://repo.com","text":"Repo"}]`,
			"skills":      `["Go","Docker"]`,
		}, map[string][]string{
			"media_files": {"shot.png"},
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var project models.Project
		decodeBody(t, resp, &project)
		assert.Len(t, project.Links, 1)
		assert.Len(t, project.SkillRefs, 2)
		assert.Len(t, project.Media, 1)
		assert.Equal(t, 1, store.Len())

		var refCount int64
		require.NoError(t, db.Model(&models.SkillReference{}).Count(&refCount).Error)
		assert.EqualValues(t, 2, refCount)
	})

	t.Run("malformed links container is a 400", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		req := multipartRequest(t, http.MethodPost, "/api/projects", map[string]string{
			"title":      "Strict",
			"links_data": `{"url":"http://x.com"}`,
		}, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Equal(t, []string{"links_data must be a JSON array of objects"}, body["links_data"])
	})

	t.Run("unknown skill IDs reported without side effects", func(t *testing.T) {
		app, _, _, db := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/projects", map[string]any{
			"title":  "Ghost Tags",
			"skills": []any{42, 99},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Equal(t, []string{"The following skill IDs do not exist: 42, 99"}, body["skills"])

		var count int64
		require.NoError(t, db.Model(&models.Project{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestProjectSkillUnlinkHandler(t *testing.T) {
	app, _, _, db := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/projects", map[string]any{
		"title":  "Tagged",
		"skills": []any{"Go"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Skill tags marshal the catalog reference ID as "id"; that decodes
	// into the join struct's ID field here.
	var project models.Project
	decodeBody(t, resp, &project)
	require.Len(t, project.SkillRefs, 1)
	refID := project.SkillRefs[0].ID

	resp, err = app.Test(jsonRequest(t, http.MethodDelete,
		"/api/projects/"+itoa(project.ID)+"/skills/"+itoa(refID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The catalog entry survives the unlink.
	var refCount int64
	require.NoError(t, db.Model(&models.SkillReference{}).Count(&refCount).Error)
	assert.EqualValues(t, 1, refCount)
}

func TestExperienceHandlers(t *testing.T) {
	t.Run("create validates dates", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/experiences", map[string]any{
			"title":      "Engineer",
			"start_date": "2023-05-01",
			"end_date":   "2022-01-01",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Contains(t, body, "end_date")
	})

	t.Run("bad date format rejected before the service runs", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/experiences", map[string]any{
			"title":      "Engineer",
			"start_date": "05/01/2023",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Equal(t, []string{"Invalid date format. Use YYYY-MM-DD."}, body["start_date"])
	})

	t.Run("null end_date clears it, absent leaves it", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/experiences", map[string]any{
			"title":      "Engineer",
			"start_date": "2020-01-01",
			"end_date":   "2022-01-01",
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var exp models.Experience
		decodeBody(t, resp, &exp)
		require.NotNil(t, exp.EndDate)

		resp, err = app.Test(jsonRequest(t, http.MethodPut,
			"/api/experiences/"+itoa(exp.ID), map[string]any{"location": "Remote"}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &exp)
		assert.NotNil(t, exp.EndDate)
		assert.Equal(t, "Remote", exp.Location)

		resp, err = app.Test(jsonRequest(t, http.MethodPut,
			"/api/experiences/"+itoa(exp.ID), map[string]any{"end_date": nil}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &exp)
		assert.Nil(t, exp.EndDate)
	})

	t.Run("list is newest first with current on top", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		for _, body := range []map[string]any{
			{"title": "Old", "start_date": "2018-01-01"},
			{"title": "Now", "start_date": "2021-06-01", "is_current": true},
		} {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/experiences", body))
			require.NoError(t, err)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}

		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/experiences", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Count   int                 `json:"count"`
			Results []models.Experience `json:"results"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Results, 2)
		assert.Equal(t, "Now", body.Results[0].Title)
	})
}

func TestProjectChildItemHandlers(t *testing.T) {
	app, _, store, db := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/projects", map[string]any{
		"title":      "Workbench",
		"links_data": []map[string]any{{"url": "http://old.com", "text": "Old"}},
		"skills":     []any{"Go"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var project models.Project
	decodeBody(t, resp, &project)
	require.Len(t, project.Links, 1)
	require.Len(t, project.SkillRefs, 1)
	projectID := itoa(project.ID)
	goRefID := project.SkillRefs[0].ID

	t.Run("link update is partial", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut,
			"/api/projects/"+projectID+"/links/"+itoa(project.Links[0].ID),
			map[string]any{"text": "Fresh", "order": 3}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var link models.ProjectLink
		decodeBody(t, resp, &link)
		assert.Equal(t, "http://old.com", link.URL)
		assert.Equal(t, "Fresh", link.Text)
		assert.Equal(t, 3, link.Order)
	})

	t.Run("media append and reorder", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/projects/"+projectID+"/media",
			nil, map[string][]string{"media_files": {"demo.png"}})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var media []models.ProjectMedia
		decodeBody(t, resp, &media)
		require.Len(t, media, 1)
		assert.Equal(t, 1, store.Len())

		resp, err = app.Test(jsonRequest(t, http.MethodPut,
			"/api/projects/"+projectID+"/media/"+itoa(media[0].ID),
			map[string]any{"order": 5}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var item models.ProjectMedia
		decodeBody(t, resp, &item)
		assert.Equal(t, 5, item.Order)
	})

	t.Run("skill link rejects unknown and duplicate references", func(t *testing.T) {
		ref := models.SkillReference{Name: "Docker"}
		require.NoError(t, db.Create(&ref).Error)

		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			"/api/projects/"+projectID+"/skills", map[string]any{"reference_id": ref.ID}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var tags []models.ProjectSkillRef
		decodeBody(t, resp, &tags)
		assert.Len(t, tags, 2)

		resp, err = app.Test(jsonRequest(t, http.MethodPost,
			"/api/projects/"+projectID+"/skills", map[string]any{"reference_id": goRefID}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Equal(t, []string{"This skill is already linked to the project."}, body["skills"])

		resp, err = app.Test(jsonRequest(t, http.MethodPost,
			"/api/projects/"+projectID+"/skills", map[string]any{"reference_id": 999}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		decodeBody(t, resp, &body)
		assert.Equal(t, []string{"The following skill IDs do not exist: 999"}, body["skills"])
	})
}

func TestUpdateProjectNullSkills(t *testing.T) {
	app, _, _, db := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/projects", map[string]any{
		"title":  "Durable",
		"skills": []any{"Go"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var project models.Project
	decodeBody(t, resp, &project)
	require.Len(t, project.SkillRefs, 1)

	// An explicit null is rejected; only an empty list clears the joins.
	resp, err = app.Test(jsonRequest(t, http.MethodPut,
		"/api/projects/"+itoa(project.ID), map[string]any{"skills": nil}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string][]string
	decodeBody(t, resp, &body)
	assert.Equal(t, []string{"This field may not be null."}, body["skills"])

	var joins int64
	require.NoError(t, db.Model(&models.ProjectSkillRef{}).Count(&joins).Error)
	assert.EqualValues(t, 1, joins)
}
