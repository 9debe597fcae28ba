package server

import (
	"net/http"
	"testing"

	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLearningTestApp(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Get("/learning/paths", s.GetLearningPaths)
	app.Post("/learning/steps/:stepId/complete", s.CompleteLearningStep)
	return app
}

func TestLearningPaths(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	user := createTestUser(t, db, "student")

	require.NoError(t, db.Create(&models.LearningPath{ID: "lucid-basics", Title: "Lucid Basics"}).Error)
	require.NoError(t, db.Create(&models.LearningStep{ID: "lb-1", PathID: "lucid-basics", Ord: 1, Title: "Reality checks"}).Error)
	require.NoError(t, db.Create(&models.LearningStep{ID: "lb-2", PathID: "lucid-basics", Ord: 2, Title: "Dream journal"}).Error)

	app := newLearningTestApp(s, user.ID)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/learning/steps/lb-1/complete", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/learning/paths", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Paths []struct {
			ID               string   `json:"id"`
			CompletedStepIDs []string `json:"completed_step_ids"`
			TotalSteps       int      `json:"total_steps"`
			CompletedSteps   int      `json:"completed_steps"`
		} `json:"paths"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Paths, 1)
	assert.Equal(t, "lucid-basics", body.Paths[0].ID)
	assert.Equal(t, 2, body.Paths[0].TotalSteps)
	assert.Equal(t, 1, body.Paths[0].CompletedSteps)
	assert.Equal(t, []string{"lb-1"}, body.Paths[0].CompletedStepIDs)
}

func TestCompleteLearningStep_UnknownStep(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	user := createTestUser(t, db, "student")
	app := newLearningTestApp(s, user.ID)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/learning/steps/missing/complete", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
