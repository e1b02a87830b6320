package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rohits-web03/studentvault/internal/models"
	"github.com/rohits-web03/studentvault/internal/repositories"
	"github.com/rohits-web03/studentvault/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *repositories.StudentRepository {
	t.Helper()
	return repositories.NewStudentRepository(repotest.NewDB(t))
}

func student(email string) *models.Student {
	return &models.Student{
		Email:          email,
		FullName:       "ct-name",
		PhoneNumber:    "ct-phone",
		DateOfBirth:    "ct-dob",
		Gender:         "ct-gender",
		Address:        "ct-address",
		CourseEnrolled: "ct-course",
		Password:       "digest",
	}
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	s := student("jane@example.com")
	require.NoError(t, r.Create(ctx, s))
	require.NotEqual(t, uuid.Nil, s.ID)

	byEmail, err := r.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, s.ID, byEmail.ID)

	byID, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "ct-name", byID.FullName)

	_, err = r.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = r.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCreateDuplicateEmailFails(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.Create(ctx, student("dup@example.com")))
	assert.Error(t, r.Create(ctx, student("dup@example.com")))
}

func TestUpdateTouchesOnlyGivenColumns(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	s := student("jane@example.com")
	require.NoError(t, r.Create(ctx, s))

	require.NoError(t, r.Update(ctx, s.ID, map[string]any{models.ColAddress: "ct-new-address"}))
	got, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "ct-new-address", got.Address)
	assert.Equal(t, "ct-name", got.FullName)

	assert.ErrorIs(t, r.Update(ctx, uuid.New(), map[string]any{models.ColGender: "x"}), repositories.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, uuid.New(), nil), repositories.ErrNotFound)
	assert.NoError(t, r.Update(ctx, s.ID, nil))
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	a, b := student("a@example.com"), student("b@example.com")
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.ErrorIs(t, r.Delete(ctx, a.ID), repositories.ErrNotFound)

	all, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}
