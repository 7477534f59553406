package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/dto"
	"mongolens-be/internal/entity"
)

func TestProfileService_Crud(t *testing.T) {
	t.Run("create then fetch", func(t *testing.T) {
		repo := newMemProfileRepo()
		svc := NewProfileService(repo)

		created, err := svc.Create(&dto.CreateProfileRequest{Name: "local", URI: "mongodb://localhost/shop"})
		require.NoError(t, err)

		got, err := svc.GetById(created.Id)
		require.NoError(t, err)
		assert.Equal(t, "local", got.Name)
	})

	t.Run("get unknown id", func(t *testing.T) {
		svc := NewProfileService(newMemProfileRepo())

		_, err := svc.GetById("missing")

		assert.True(t, apperr.IsProfileNotFound(err))
	})

	t.Run("update with a new uri resets the driver version", func(t *testing.T) {
		repo := newMemProfileRepo(&entity.ConnectionProfile{
			Id: "c1", Name: "local", URI: "mongodb://localhost/shop", LastDriverVersion: "6",
		})
		svc := NewProfileService(repo)

		res, err := svc.Update(&dto.UpdateProfileRequest{Id: "c1", Name: "local", URI: "mongodb://other/shop"})

		require.NoError(t, err)
		assert.Empty(t, res.LastDriverVersion)
	})

	t.Run("update with the same uri keeps the driver version", func(t *testing.T) {
		repo := newMemProfileRepo(&entity.ConnectionProfile{
			Id: "c1", Name: "local", URI: "mongodb://localhost/shop", LastDriverVersion: "6",
		})
		svc := NewProfileService(repo)

		res, err := svc.Update(&dto.UpdateProfileRequest{Id: "c1", Name: "renamed", URI: "mongodb://localhost/shop"})

		require.NoError(t, err)
		assert.Equal(t, "6", res.LastDriverVersion)
		assert.Equal(t, "renamed", res.Name)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		svc := NewProfileService(newMemProfileRepo())

		err := svc.Delete("missing")

		assert.True(t, apperr.IsProfileNotFound(err))
	})

	t.Run("delete removes the profile", func(t *testing.T) {
		repo := newMemProfileRepo(&entity.ConnectionProfile{Id: "c1", Name: "local", URI: "mongodb://localhost/shop"})
		svc := NewProfileService(repo)

		require.NoError(t, svc.Delete("c1"))
		all, err := svc.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
