package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/filestorage"
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

func newUserService(e *env, storage filestorage.FileStorageInterface) UserServiceInterface {
	return NewUserService(e.base, e.tx, e.users, storage, testAuthConfig.BcryptCost, e.logger)
}

func TestUsers_List(t *testing.T) {
	e := newEnv()
	svc := newUserService(e, nil)

	_, _, err := svc.GetUsers(asUser(), types.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	users, total, err := svc.GetUsers(asManager(), types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Len(t, users, 3)

	self, err := svc.FindUser(asUser(), userID)
	require.NoError(t, err)
	assert.Equal(t, "joao", self.Username)

	_, err = svc.FindUser(asUser(), managerID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUsers_CreateRespectsRoleGate(t *testing.T) {
	e := newEnv()
	svc := newUserService(e, nil)
	payload := dto.CreateUserDTO{Username: " maria ", RealName: "Maria", Email: "maria@acme.com", Password: "segredo", Role: string(entities.RoleUser)}

	_, err := svc.CreateUser(asUser(), payload)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	adminPayload := payload
	adminPayload.Role = string(entities.RoleAdmin)
	_, err = svc.CreateUser(asManager(), adminPayload)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "менеджер не выдаёт роль администратора")

	created, err := svc.CreateUser(asManager(), payload)
	require.NoError(t, err)
	assert.Equal(t, "maria", created.Username)
	assert.NoError(t, utils.ComparePasswords(e.users.byID[created.ID].Password, "segredo"))
	assert.Equal(t, entities.ActionCreate, e.audit.last().ActionType)

	_, err = svc.CreateUser(asManager(), payload)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUsers_Update(t *testing.T) {
	e := newEnv()
	svc := newUserService(e, nil)

	_, err := svc.UpdateUser(asManager(), adminID, dto.UpdateUserDTO{RealName: null.StringFrom("Hack")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "менеджер не трогает администратора")

	_, err = svc.UpdateUser(asManager(), userID, dto.UpdateUserDTO{Role: null.StringFrom(string(entities.RoleAdmin))})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.UpdateUser(asManager(), userID, dto.UpdateUserDTO{
		RealName: null.StringFrom("João S."),
		Role:     null.StringFrom(string(entities.RoleUserManager)),
		Password: null.StringFrom("novasenha"),
	})
	require.NoError(t, err)
	assert.Equal(t, "João S.", updated.RealName)
	assert.Equal(t, entities.RoleUserManager, updated.Role)
	assert.Equal(t, "joao", updated.Username, "неуказанные поля не меняются")
	assert.NoError(t, utils.ComparePasswords(e.users.byID[userID].Password, "novasenha"))
}

func TestUsers_Delete(t *testing.T) {
	e := newEnv()
	svc := newUserService(e, nil)

	assert.ErrorIs(t, svc.DeleteUser(asManager(), managerID), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.DeleteUser(asManager(), adminID), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.DeleteUser(asUser(), managerID), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(asManager(), 99), apperrors.ErrNotFound)

	require.NoError(t, svc.DeleteUser(asManager(), userID))
	_, ok := e.users.byID[userID]
	assert.False(t, ok)
	assert.Equal(t, entities.ActionDelete, e.audit.last().ActionType)
}

func TestUsers_UpdateProfile(t *testing.T) {
	e := newEnv()
	svc := newUserService(e, nil)

	_, err := svc.UpdateProfile(asUser(), managerID, dto.UpdateProfileDTO{RealName: null.StringFrom("x")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.UpdateProfile(asUser(), userID, dto.UpdateProfileDTO{
		Email:     null.StringFrom(" joao@acme.com "),
		AvatarURL: null.StringFrom("https://cdn.acme.com/j.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "joao@acme.com", updated.Email)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, entities.RoleUser, updated.Role)

	cleared, err := svc.UpdateProfile(asUser(), userID, dto.UpdateProfileDTO{AvatarURL: null.StringFrom("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.AvatarURL)
}

func TestUsers_UploadAvatar(t *testing.T) {
	e := newEnv()
	_, err := newUserService(e, nil).UploadAvatar(asUser(), userID, strings.NewReader("png"), "me.png")
	assert.ErrorIs(t, err, apperrors.ErrFeatureNotConfigured)

	dir := t.TempDir()
	storage, err := filestorage.NewLocalFileStorage(dir)
	require.NoError(t, err)
	svc := newUserService(e, storage)

	first, err := svc.UploadAvatar(asUser(), userID, strings.NewReader("png-1"), "me.png")
	require.NoError(t, err)
	require.NotNil(t, first.AvatarURL)
	assert.True(t, strings.HasPrefix(*first.AvatarURL, "/uploads/avatars/"))
	firstPath := filepath.Join(dir, strings.TrimPrefix(*first.AvatarURL, "/uploads/"))
	assert.FileExists(t, firstPath)

	second, err := svc.UploadAvatar(asUser(), userID, strings.NewReader("png-2"), "me.png")
	require.NoError(t, err)
	assert.NotEqual(t, *first.AvatarURL, *second.AvatarURL)
	_, statErr := os.Stat(firstPath)
	assert.True(t, os.IsNotExist(statErr), "старый аватар удаляется")

	_, err = svc.UploadAvatar(asUser(), managerID, strings.NewReader("png"), "x.png")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
