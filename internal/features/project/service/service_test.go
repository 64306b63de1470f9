package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/todo-backend/internal/common/validation"
	"github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/project/sharecode"
)

func newProjectService(f *fixture) ProjectService {
	return NewProjectService(f.store.Projects(), f.sharing, NewContentLoader(f.store.Categories(), f.store.Tasks()))
}

func TestProjectService_Create(t *testing.T) {
	f := newFixture(t, sharecode.NewRandom(6), SharingOptions{})
	svc := newProjectService(f)
	ctx := context.Background()

	p, err := svc.Create(ctx, f.owner.ID, CreateInput{Name: "  Work  ", Description: "office"})
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name)
	assert.Equal(t, f.owner.ID, p.OwnerID)
	assert.Nil(t, p.ShareCode)

	_, err = svc.Create(ctx, f.owner.ID, CreateInput{Name: "Work"})
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.Create(ctx, f.owner.ID, CreateInput{Name: ""})
	var fe *validation.FieldError
	assert.True(t, errors.As(err, &fe))
}

func TestProjectService_ListHidesCodeFromMembers(t *testing.T) {
	f := newFixture(t, sharecode.NewRandom(6), SharingOptions{})
	svc := newProjectService(f)
	ctx := context.Background()

	code, err := f.sharing.GenerateShareCode(ctx, f.project.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = f.sharing.JoinProject(ctx, code, f.other.ID)
	require.NoError(t, err)

	ownerView, err := svc.List(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	require.NotNil(t, ownerView[0].ShareCode)
	assert.Equal(t, code, *ownerView[0].ShareCode)

	memberView, err := svc.List(ctx, f.other.ID)
	require.NoError(t, err)
	require.Len(t, memberView, 1)
	assert.Equal(t, models.RoleMember, memberView[0].Role)
	assert.Nil(t, memberView[0].ShareCode)
}

func TestProjectService_Get(t *testing.T) {
	f := newFixture(t, sharecode.NewRandom(6), SharingOptions{})
	svc := newProjectService(f)
	ctx := context.Background()

	summary, err := svc.Get(ctx, f.project.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, summary.Role)
	assert.NotNil(t, summary.Tasks)
	assert.NotNil(t, summary.Categories)

	_, err = svc.Get(ctx, f.project.ID, f.other.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_UpdateAndDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t, sharecode.NewRandom(6), SharingOptions{})
	svc := newProjectService(f)
	ctx := context.Background()

	code, err := f.sharing.GenerateShareCode(ctx, f.project.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = f.sharing.JoinProject(ctx, code, f.other.ID)
	require.NoError(t, err)

	newName := "Renamed"
	_, err = svc.Update(ctx, f.project.ID, f.other.ID, UpdateInput{Name: &newName})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, svc.Delete(ctx, f.project.ID, f.other.ID), ErrNotOwner)

	updated, err := svc.Update(ctx, f.project.ID, f.owner.ID, UpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.ShareCode)
	assert.Equal(t, code, *updated.ShareCode)

	require.NoError(t, svc.Delete(ctx, f.project.ID, f.owner.ID))
	_, err = svc.Get(ctx, f.project.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_UpdateNameConflict(t *testing.T) {
	f := newFixture(t, sharecode.NewRandom(6), SharingOptions{})
	svc := newProjectService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.owner.ID, CreateInput{Name: "Other"})
	require.NoError(t, err)

	name := "Other"
	_, err = svc.Update(ctx, f.project.ID, f.owner.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNameTaken)
}
