package filter

import (
	"testing"
	"time"

	"chors/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, s *store.Store, parent store.ID, title string) store.ID {
	t.Helper()
	id, err := s.Create(parent, title)
	require.NoError(t, err)
	return id
}

func mustView(t *testing.T, expression string, key SortKey, showCompleted bool) View {
	t.Helper()
	v, err := NewView("test", expression, key, showCompleted)
	require.NoError(t, err)
	return v
}

func ids(list []Entry) []store.ID {
	out := make([]store.ID, len(list))
	for i, entry := range list {
		out[i] = entry.ID
	}
	return out
}

func TestProjectEmptyFilterShowsEverything(t *testing.T) {
	s := store.New()
	a := mustCreate(t, s, store.None, "a")
	b := mustCreate(t, s, a, "b")
	c := mustCreate(t, s, store.None, "c")

	list := Project(s, mustView(t, "", SortManual, true))
	assert.Equal(t, []store.ID{a, b, c}, ids(list))
	assert.Equal(t, 0, list[0].Depth)
	assert.Equal(t, 1, list[1].Depth)
	assert.True(t, list[0].HasVisibleChildren)
	assert.False(t, list[1].HasVisibleChildren)
}

func TestProjectKeepsAncestorsOfMatches(t *testing.T) {
	s := store.New()
	root := mustCreate(t, s, store.None, "plain root")
	mid := mustCreate(t, s, root, "plain mid")
	leaf := mustCreate(t, s, mid, "deep #match")
	mustCreate(t, s, store.None, "unrelated")

	list := Project(s, mustView(t, "#match", SortManual, true))

	// Non-matching ancestors stay visible as context for the match.
	assert.Equal(t, []store.ID{root, mid, leaf}, ids(list))
	assert.Equal(t, []int{0, 1, 2}, []int{list[0].Depth, list[1].Depth, list[2].Depth})
	assert.True(t, list[0].HasVisibleChildren)
	assert.False(t, list[2].HasVisibleChildren)
}

func TestProjectHidesCompletedWhenToggled(t *testing.T) {
	s := store.New()
	open := mustCreate(t, s, store.None, "open")
	done := mustCreate(t, s, store.None, "done")
	require.NoError(t, s.SetStatus(done, store.StatusDone))

	visible := Project(s, mustView(t, "", SortManual, true))
	assert.Equal(t, []store.ID{open, done}, ids(visible))

	hidden := Project(s, mustView(t, "", SortManual, false))
	assert.Equal(t, []store.ID{open}, ids(hidden))
}

func TestProjectCompletedParentKeptForOpenChild(t *testing.T) {
	s := store.New()
	parent := mustCreate(t, s, store.None, "parent")
	child := mustCreate(t, s, parent, "child")
	require.NoError(t, s.SetStatus(parent, store.StatusDone))

	list := Project(s, mustView(t, "", SortManual, false))
	assert.Equal(t, []store.ID{parent, child}, ids(list))
}

func TestProjectSortPriority(t *testing.T) {
	s := store.New()
	low := mustCreate(t, s, store.None, "low")
	high := mustCreate(t, s, store.None, "high")
	none := mustCreate(t, s, store.None, "none")

	pLow, pHigh := store.PriorityLow, store.PriorityHigh
	require.NoError(t, s.Update(low, store.Patch{Priority: &pLow}))
	require.NoError(t, s.Update(high, store.Patch{Priority: &pHigh}))

	list := Project(s, mustView(t, "", SortPriority, true))
	assert.Equal(t, []store.ID{high, low, none}, ids(list))
}

func TestProjectSortDueNilLast(t *testing.T) {
	s := store.New()
	later := mustCreate(t, s, store.None, "later")
	never := mustCreate(t, s, store.None, "never")
	soon := mustCreate(t, s, store.None, "soon")

	d1 := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetDue(soon, &d1))
	require.NoError(t, s.SetDue(later, &d2))

	list := Project(s, mustView(t, "", SortDue, true))
	assert.Equal(t, []store.ID{soon, later, never}, ids(list))
}

func TestProjectSortTitleCaseInsensitive(t *testing.T) {
	s := store.New()
	b := mustCreate(t, s, store.None, "banana")
	a := mustCreate(t, s, store.None, "Apple")

	list := Project(s, mustView(t, "", SortTitle, true))
	assert.Equal(t, []store.ID{a, b}, ids(list))
}

func TestProjectSortIsStableWithinTies(t *testing.T) {
	s := store.New()
	first := mustCreate(t, s, store.None, "first")
	second := mustCreate(t, s, store.None, "second")
	third := mustCreate(t, s, store.None, "third")

	// Equal priority everywhere keeps manual order.
	list := Project(s, mustView(t, "", SortPriority, true))
	assert.Equal(t, []store.ID{first, second, third}, ids(list))
}

func TestProjectSortAppliesPerSiblingGroup(t *testing.T) {
	s := store.New()
	root := mustCreate(t, s, store.None, "zzz root")
	cb := mustCreate(t, s, root, "beta")
	ca := mustCreate(t, s, root, "alpha")
	other := mustCreate(t, s, store.None, "aaa root")

	list := Project(s, mustView(t, "", SortTitle, true))

	// Roots sort against roots, children against their own siblings.
	assert.Equal(t, []store.ID{other, root, ca, cb}, ids(list))
}

func TestIndexOf(t *testing.T) {
	list := []Entry{{ID: 3}, {ID: 7}, {ID: 9}}
	assert.Equal(t, 1, IndexOf(list, 7))
	assert.Equal(t, -1, IndexOf(list, 4))
	assert.Equal(t, -1, IndexOf(nil, 1))
}
