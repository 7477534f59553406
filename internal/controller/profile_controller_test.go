package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mongolens-be/internal/dto"
	"mongolens-be/internal/pkg/serverutils"
	"mongolens-be/internal/repository/memory"
	"mongolens-be/internal/service"
)

func newProfileApp() *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewProfileController(service.NewProfileService(memory.NewProfileRepository())).RegisterRoutes(api)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) serverutils.BaseResponse[T] {
	t.Helper()
	var out serverutils.BaseResponse[T]
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestProfileController(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		app := newProfileApp()

		res := doJSON(t, app, http.MethodPost, "/api/profile/v1", dto.CreateProfileRequest{
			Name: "local",
			URI:  "mongodb://localhost:27017/shop",
		})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		created := decode[dto.ProfileResponse](t, res)
		assert.NotEmpty(t, created.Data.Id)

		res = doJSON(t, app, http.MethodGet, "/api/profile/v1", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		list := decode[[]dto.ProfileResponse](t, res)
		assert.Len(t, list.Data, 1)
	})

	t.Run("validation failure is a 400", func(t *testing.T) {
		app := newProfileApp()

		res := doJSON(t, app, http.MethodPost, "/api/profile/v1", dto.CreateProfileRequest{Name: "no-uri"})

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("unknown profile is a 404", func(t *testing.T) {
		app := newProfileApp()

		res := doJSON(t, app, http.MethodGet, "/api/profile/v1/missing", nil)

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("update and delete", func(t *testing.T) {
		app := newProfileApp()

		res := doJSON(t, app, http.MethodPost, "/api/profile/v1", dto.CreateProfileRequest{
			Name: "local",
			URI:  "mongodb://localhost:27017/shop",
		})
		created := decode[dto.ProfileResponse](t, res)

		res = doJSON(t, app, http.MethodPut, "/api/profile/v1/"+created.Data.Id, dto.UpdateProfileRequest{
			Name: "renamed",
			URI:  "mongodb://localhost:27017/shop",
		})
		require.Equal(t, http.StatusOK, res.StatusCode)
		updated := decode[dto.ProfileResponse](t, res)
		assert.Equal(t, "renamed", updated.Data.Name)

		res = doJSON(t, app, http.MethodDelete, "/api/profile/v1/"+created.Data.Id, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doJSON(t, app, http.MethodGet, "/api/profile/v1/"+created.Data.Id, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}
