package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/todo-backend/internal/common/validation"
	categorymodels "github.com/open-builders/todo-backend/internal/features/category/models"
	projectmodels "github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/task/models"
	"github.com/open-builders/todo-backend/internal/platform/memory"
)

var errNoAccess = errors.New("no access")

type memberAccess struct{}

func (memberAccess) CheckAccess(_ context.Context, _, userID int64) error {
	if userID != 1 {
		return errNoAccess
	}
	return nil
}

type fixture struct {
	svc     TaskService
	home    int64
	work    int64
	homeCat int64
	workCat int64
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	home := &projectmodels.Project{Name: "Home", OwnerID: 1}
	require.NoError(t, store.Projects().Create(ctx, home))
	work := &projectmodels.Project{Name: "Work", OwnerID: 1}
	require.NoError(t, store.Projects().Create(ctx, work))

	homeCat := &categorymodels.Category{ProjectID: home.ID, Name: "Dairy", Color: categorymodels.DefaultColor}
	require.NoError(t, store.Categories().Create(ctx, homeCat))
	workCat := &categorymodels.Category{ProjectID: work.ID, Name: "Ops", Color: categorymodels.DefaultColor}
	require.NoError(t, store.Categories().Create(ctx, workCat))

	return fixture{
		svc:     NewTaskService(store.Tasks(), store.Categories(), memberAccess{}),
		home:    home.ID,
		work:    work.ID,
		homeCat: homeCat.ID,
		workCat: workCat.ID,
	}
}

func TestCreate(t *testing.T) {
	f := setup(t)
	due := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	task, err := f.svc.Create(context.Background(), f.home, 1, CreateInput{
		Title:      " Buy milk ",
		Priority:   "high",
		DueDate:    &due,
		CategoryID: &f.homeCat,
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, &due, task.DueDate)
	assert.False(t, task.Completed)
}

func TestCreate_CategoryFromOtherProject(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), f.home, 1, CreateInput{Title: "Deploy", CategoryID: &f.workCat})
	assert.ErrorIs(t, err, ErrCategoryMismatch)

	missing := int64(999)
	_, err = f.svc.Create(context.Background(), f.home, 1, CreateInput{Title: "Deploy", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryMismatch)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t)
	var fe *validation.FieldError

	_, err := f.svc.Create(context.Background(), f.home, 1, CreateInput{Title: ""})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "title", fe.Field)

	_, err = f.svc.Create(context.Background(), f.home, 1, CreateInput{Title: "x", Priority: "URGENT"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "priority", fe.Field)
}

func TestAccessCheckedFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.home, 2, CreateInput{Title: "Buy milk"})
	assert.ErrorIs(t, err, errNoAccess)
	_, err = f.svc.List(ctx, f.home, 2, models.Filter{})
	assert.ErrorIs(t, err, errNoAccess)
}

func TestUpdate_ClearsAndCompletes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	task, err := f.svc.Create(ctx, f.home, 1, CreateInput{Title: "Buy milk", DueDate: &due, CategoryID: &f.homeCat})
	require.NoError(t, err)

	done := true
	updated, err := f.svc.Update(ctx, f.home, task.ID, 1, UpdateInput{
		ClearDueDate:  true,
		ClearCategory: true,
		Completed:     &done,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.CategoryID)
	assert.True(t, updated.Completed)

	got, err := f.svc.Get(ctx, f.home, task.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestUpdate_RejectsForeignCategory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.home, 1, CreateInput{Title: "Buy milk"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.home, task.ID, 1, UpdateInput{CategoryID: &f.workCat})
	assert.ErrorIs(t, err, ErrCategoryMismatch)
}

func TestTaskScopedToProject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.home, 1, CreateInput{Title: "Buy milk"})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.work, task.ID, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.work, task.ID, 1), ErrTaskNotFound)

	require.NoError(t, f.svc.Delete(ctx, f.home, task.ID, 1))
	_, err = f.svc.Get(ctx, f.home, task.ID, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestList_Filter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.home, 1, CreateInput{Title: "Buy milk", CategoryID: &f.homeCat})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.home, 1, CreateInput{Title: "Call mom", Priority: "LOW"})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, f.home, 1, models.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low := models.PriorityLow
	filtered, err := f.svc.List(ctx, f.home, 1, models.Filter{Priority: &low})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Call mom", filtered[0].Title)

	byCategory, err := f.svc.List(ctx, f.home, 1, models.Filter{CategoryID: &f.homeCat})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Buy milk", byCategory[0].Title)
}
