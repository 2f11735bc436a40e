package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chors/internal/filter"
	"chors/internal/store"
	"chors/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(filepath.Join(t.TempDir(), "tasks.json"), 10)
	require.NoError(t, svc.Load())
	return svc
}

func addTask(t *testing.T, svc *Service, parent store.ID, title string) store.ID {
	t.Helper()
	var id store.ID
	err := svc.Mutate(func(st *store.Store, _ *view.Manager) error {
		var err error
		id, err = st.Create(parent, title)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, 0, svc.TaskCount())
	assert.Equal(t, []string{view.DefaultName}, svc.ViewNames())
}

func TestMutateSavesToDisk(t *testing.T) {
	svc := newTestService(t)
	id := addTask(t, svc, store.None, "persisted")

	// A fresh service over the same file sees the task.
	other := NewService(svc.Path(), 10)
	require.NoError(t, other.Load())
	task, ok := other.Task(id)
	require.True(t, ok)
	assert.Equal(t, "persisted", task.Title)
}

func TestMutateErrorLeavesNoTrace(t *testing.T) {
	svc := newTestService(t)
	addTask(t, svc, store.None, "only")
	before, err := os.ReadFile(svc.Path())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = svc.Mutate(func(st *store.Store, _ *view.Manager) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing was written and no history entry was recorded.
	after, err := os.ReadFile(svc.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, svc.Undo())
	assert.Equal(t, 0, svc.TaskCount())
	assert.ErrorIs(t, svc.Undo(), store.ErrInvalidState)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	svc := newTestService(t)
	a := addTask(t, svc, store.None, "a")
	b := addTask(t, svc, store.None, "b")
	assert.Equal(t, 2, svc.TaskCount())

	require.NoError(t, svc.Undo())
	assert.Equal(t, 1, svc.TaskCount())
	_, ok := svc.Task(b)
	assert.False(t, ok)

	require.NoError(t, svc.Redo())
	assert.Equal(t, 2, svc.TaskCount())
	task, ok := svc.Task(b)
	require.True(t, ok)
	assert.Equal(t, "b", task.Title)

	_, ok = svc.Task(a)
	assert.True(t, ok)
}

func TestUndoRedoBoundaries(t *testing.T) {
	svc := newTestService(t)
	assert.ErrorIs(t, svc.Undo(), store.ErrInvalidState)
	assert.ErrorIs(t, svc.Redo(), store.ErrInvalidState)

	addTask(t, svc, store.None, "a")
	require.NoError(t, svc.Undo())
	assert.ErrorIs(t, svc.Undo(), store.ErrInvalidState)
}

func TestNewMutationClearsRedo(t *testing.T) {
	svc := newTestService(t)
	addTask(t, svc, store.None, "a")
	require.NoError(t, svc.Undo())

	addTask(t, svc, store.None, "b")
	assert.ErrorIs(t, svc.Redo(), store.ErrInvalidState)
}

func TestHistoryDepthIsBounded(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "tasks.json"), 3)
	require.NoError(t, svc.Load())

	for _, title := range []string{"a", "b", "c", "d", "e"} {
		addTask(t, svc, store.None, title)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Undo())
	}
	assert.ErrorIs(t, svc.Undo(), store.ErrInvalidState)
	assert.Equal(t, 2, svc.TaskCount())
}

func TestUndoRestoresViewState(t *testing.T) {
	svc := newTestService(t)
	err := svc.Mutate(func(_ *store.Store, views *view.Manager) error {
		v, err := newWorkView()
		if err != nil {
			return err
		}
		return views.Save(v)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{view.DefaultName, "work"}, svc.ViewNames())

	require.NoError(t, svc.Undo())
	assert.Equal(t, []string{view.DefaultName}, svc.ViewNames())

	require.NoError(t, svc.Redo())
	assert.Equal(t, []string{view.DefaultName, "work"}, svc.ViewNames())
}

func newWorkView() (filter.View, error) {
	return filter.NewView("work", "#work", filter.SortManual, true)
}

func TestActivateViewPersistsWithoutHistory(t *testing.T) {
	svc := newTestService(t)
	addTask(t, svc, store.None, "task")

	name, err := svc.ActivateNextView()
	require.NoError(t, err)
	assert.Equal(t, view.DefaultName, name, "single view cycles to itself")

	// Undo undoes the task creation, not the view switch.
	require.NoError(t, svc.Undo())
	assert.Equal(t, 0, svc.TaskCount())

	assert.ErrorIs(t, svc.ActivateView("missing"), store.ErrNotFound)
}

func TestProjectFollowsActiveView(t *testing.T) {
	svc := newTestService(t)
	addTask(t, svc, store.None, "alpha #work")
	addTask(t, svc, store.None, "beta")

	list := svc.Project()
	assert.Len(t, list, 2)

	err := svc.Mutate(func(_ *store.Store, views *view.Manager) error {
		v, err := newWorkView()
		if err != nil {
			return err
		}
		if err := views.Save(v); err != nil {
			return err
		}
		return views.Activate("work")
	})
	require.NoError(t, err)

	list = svc.Project()
	assert.Len(t, list, 1)
}

func TestChildrenOf(t *testing.T) {
	svc := newTestService(t)
	parent := addTask(t, svc, store.None, "parent")
	child := addTask(t, svc, parent, "child")

	assert.Equal(t, []store.ID{parent}, svc.ChildrenOf(store.None))
	assert.Equal(t, []store.ID{child}, svc.ChildrenOf(parent))
}

func TestReloadOnExternalChange(t *testing.T) {
	svc := newTestService(t)
	addTask(t, svc, store.None, "original")

	// Another service writing the same file stands in for an external edit.
	other := NewService(svc.Path(), 10)
	require.NoError(t, other.Load())
	require.NoError(t, other.Mutate(func(st *store.Store, _ *view.Manager) error {
		_, err := st.Create(store.None, "external")
		return err
	}))

	require.NoError(t, svc.Load())
	assert.Equal(t, 2, svc.TaskCount())
}
