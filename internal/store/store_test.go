package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, s *Store, parent ID, title string) ID {
	t.Helper()
	id, err := s.Create(parent, title)
	require.NoError(t, err)
	return id
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	s := New()

	a := mustCreate(t, s, None, "first")
	b := mustCreate(t, s, None, "second")

	assert.Equal(t, ID(1), a)
	assert.Equal(t, ID(2), b)
	assert.Equal(t, []ID{a, b}, s.Roots())

	// Deleting does not free the ID for reuse.
	_, err := s.Delete(b)
	require.NoError(t, err)
	c := mustCreate(t, s, None, "third")
	assert.Equal(t, ID(3), c)
}

func TestCreateValidation(t *testing.T) {
	s := New()

	_, err := s.Create(None, "   ")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = s.Create(99, "orphan")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestCreateExtractsTagsAndContexts(t *testing.T) {
	s := New()

	id := mustCreate(t, s, None, "Fix the #urgent build @work #urgent #ci")
	task, ok := s.Get(id)
	require.True(t, ok)

	assert.Equal(t, []string{"urgent", "ci"}, task.Tags)
	assert.Equal(t, []string{"work"}, task.Contexts)
	assert.True(t, task.HasTag("ci"))
	assert.False(t, task.HasTag("work"))
	assert.True(t, task.HasContext("work"))
}

func TestUpdateReextractsMetaOnTitleChange(t *testing.T) {
	s := New()
	id := mustCreate(t, s, None, "old #alpha")

	title := "new @home"
	require.NoError(t, s.Update(id, Patch{Title: &title}))

	task, _ := s.Get(id)
	assert.Empty(t, task.Tags)
	assert.Equal(t, []string{"home"}, task.Contexts)
}

func TestUpdateRejectsWithoutPartialWrite(t *testing.T) {
	s := New()
	id := mustCreate(t, s, None, "task")

	desc := "should not stick"
	bad := Status("paused")
	err := s.Update(id, Patch{Description: &desc, Status: &bad})
	assert.ErrorIs(t, err, ErrValidationFailed)

	task, _ := s.Get(id)
	assert.Empty(t, task.Description)
	assert.Equal(t, StatusOpen, task.Status)
}

func TestSetStatusDoesNotCascade(t *testing.T) {
	s := New()
	parent := mustCreate(t, s, None, "parent")
	child := mustCreate(t, s, parent, "child")

	require.NoError(t, s.SetStatus(parent, StatusDone))

	p, _ := s.Get(parent)
	c, _ := s.Get(child)
	assert.Equal(t, StatusDone, p.Status)
	assert.Equal(t, StatusOpen, c.Status)
}

func TestDueAndScheduleClearing(t *testing.T) {
	s := New()
	id := mustCreate(t, s, None, "dated")

	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetDue(id, &day))
	require.NoError(t, s.SetSchedule(id, &day))

	task, _ := s.Get(id)
	require.NotNil(t, task.Due)
	require.NotNil(t, task.Scheduled)

	require.NoError(t, s.SetDue(id, nil))
	require.NoError(t, s.SetSchedule(id, nil))
	task, _ = s.Get(id)
	assert.Nil(t, task.Due)
	assert.Nil(t, task.Scheduled)
}

func TestMoveReordersSiblings(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")
	b := mustCreate(t, s, None, "b")
	c := mustCreate(t, s, None, "c")

	// Move b below c. The index is against the list after removal.
	require.NoError(t, s.Move(b, None, 2))
	assert.Equal(t, []ID{a, c, b}, s.Roots())

	// Out-of-range indexes clamp instead of failing.
	require.NoError(t, s.Move(a, None, 100))
	assert.Equal(t, []ID{c, b, a}, s.Roots())
	require.NoError(t, s.Move(a, None, -5))
	assert.Equal(t, []ID{a, c, b}, s.Roots())
}

func TestMoveReparents(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")
	b := mustCreate(t, s, None, "b")
	child := mustCreate(t, s, a, "child")

	require.NoError(t, s.Move(child, b, 0))

	assert.Empty(t, s.ChildrenOf(a))
	assert.Equal(t, []ID{child}, s.ChildrenOf(b))
	task, _ := s.Get(child)
	assert.Equal(t, b, task.Parent)
}

func TestMoveRejectsCycles(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")
	b := mustCreate(t, s, a, "b")
	c := mustCreate(t, s, b, "c")

	assert.ErrorIs(t, s.Move(a, a, 0), ErrCycleDetected)
	assert.ErrorIs(t, s.Move(a, b, 0), ErrCycleDetected)
	assert.ErrorIs(t, s.Move(a, c, 0), ErrCycleDetected)

	// Nothing moved.
	assert.Equal(t, []ID{a}, s.Roots())
	assert.Equal(t, []ID{b}, s.ChildrenOf(a))
	assert.Equal(t, []ID{c}, s.ChildrenOf(b))
}

func TestMoveMissingTargets(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")

	assert.ErrorIs(t, s.Move(42, None, 0), ErrNotFound)
	assert.ErrorIs(t, s.Move(a, 42, 0), ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")
	b := mustCreate(t, s, a, "b")
	mustCreate(t, s, b, "c")
	other := mustCreate(t, s, None, "other")

	size, err := s.SubtreeSize(a)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	count, err := s.Delete(a)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []ID{other}, s.Roots())

	// No orphans: every surviving task is reachable from the roots.
	_, ok := s.Get(b)
	assert.False(t, ok)

	_, err = s.Delete(a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsCopies(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")
	mustCreate(t, s, a, "child")

	task, _ := s.Get(a)
	task.Title = "mutated"
	task.Children[0] = 999

	fresh, _ := s.Get(a)
	assert.Equal(t, "a", fresh.Title)
	assert.NotEqual(t, ID(999), fresh.Children[0])
}

func TestAllIsPreOrder(t *testing.T) {
	s := New()
	a := mustCreate(t, s, None, "a")
	b := mustCreate(t, s, a, "b")
	c := mustCreate(t, s, None, "c")

	var ids []ID
	for _, task := range s.All() {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []ID{a, b, c}, ids)
}
