package filter

import (
	"testing"
	"time"

	"chors/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(title string, status store.Status) store.Task {
	s := store.New()
	id, _ := s.Create(store.None, title)
	_ = s.SetStatus(id, status)
	t, _ := s.Get(id)
	return t
}

func parse(t *testing.T, expression string) Condition {
	t.Helper()
	cond, err := Parse(expression)
	require.NoError(t, err)
	return cond
}

func TestParseBlankMatchesEverything(t *testing.T) {
	cond := parse(t, "   ")
	assert.True(t, cond.Match(task("anything", store.StatusOpen)))
	assert.True(t, cond.Match(task("#tagged @ctx", store.StatusCancelled)))
}

func TestParseTagAndContext(t *testing.T) {
	cond := parse(t, "#work")
	assert.True(t, cond.Match(task("ship the #work report", store.StatusOpen)))
	assert.False(t, cond.Match(task("ship the #home report", store.StatusOpen)))

	cond = parse(t, "@office")
	assert.True(t, cond.Match(task("print @office", store.StatusOpen)))
	assert.False(t, cond.Match(task("print @home", store.StatusOpen)))
}

func TestParseStatusTokens(t *testing.T) {
	open := task("t", store.StatusOpen)
	done := task("t", store.StatusDone)
	cancelled := task("t", store.StatusCancelled)

	assert.True(t, parse(t, "[ ]").Match(open))
	assert.False(t, parse(t, "[ ]").Match(done))

	assert.True(t, parse(t, "[x]").Match(done))
	assert.False(t, parse(t, "[x]").Match(cancelled))

	assert.True(t, parse(t, "[-]").Match(cancelled))
	assert.False(t, parse(t, "[-]").Match(open))
}

func TestParseQuotedText(t *testing.T) {
	cond := parse(t, `"grocery RUN"`)
	assert.True(t, cond.Match(task("Weekly Grocery run", store.StatusOpen)))
	assert.False(t, cond.Match(task("laundry", store.StatusOpen)))

	// Description is searched too.
	withDesc := task("errand", store.StatusOpen)
	withDesc.Description = "the grocery run list"
	assert.True(t, cond.Match(withDesc))
}

func TestParseDateConditions(t *testing.T) {
	due := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	dated := task("dated", store.StatusOpen)
	dated.Due = &due

	assert.True(t, parse(t, "due=2026-03-10").Match(dated))
	assert.True(t, parse(t, "due<2026-03-11").Match(dated))
	assert.True(t, parse(t, "due>2026-03-09").Match(dated))
	assert.False(t, parse(t, "due<2026-03-10").Match(dated))
	assert.False(t, parse(t, "due>2026-03-10").Match(dated))

	// Undated tasks never match a date condition.
	assert.False(t, parse(t, "due<2099-01-01").Match(task("no date", store.StatusOpen)))

	sched := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
	scheduled := task("planned", store.StatusOpen)
	scheduled.Scheduled = &sched
	assert.True(t, parse(t, "sched=2026-03-12").Match(scheduled))
	assert.False(t, parse(t, "due=2026-03-12").Match(scheduled))
}

func TestParseBooleanPrecedence(t *testing.T) {
	// and binds tighter than or: "#a or #b and [x]" is "#a or (#b and [x])".
	cond := parse(t, "#a or #b and [x]")

	assert.True(t, cond.Match(task("#a", store.StatusOpen)))
	assert.False(t, cond.Match(task("#b", store.StatusOpen)))
	assert.True(t, cond.Match(task("#b", store.StatusDone)))
}

func TestParseParenthesesAndNot(t *testing.T) {
	cond := parse(t, "(#a or #b) and not [x]")

	assert.True(t, cond.Match(task("#a", store.StatusOpen)))
	assert.True(t, cond.Match(task("#b", store.StatusCancelled)))
	assert.False(t, cond.Match(task("#a", store.StatusDone)))
	assert.False(t, cond.Match(task("#c", store.StatusOpen)))

	double := parse(t, "not not #a")
	assert.True(t, double.Match(task("#a", store.StatusOpen)))
}

func TestParseKeywordBoundaries(t *testing.T) {
	// "order" must not be misread as the operator "or".
	_, err := Parse(`"order" and #a`)
	require.NoError(t, err)

	cond := parse(t, `"order" and #a`)
	assert.True(t, cond.Match(task("reorder #a", store.StatusOpen)))
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"(#a",
		"#a and",
		"not",
		`"unterminated`,
		"due 2026-01-01",
		"due<notadate",
		"#a extra junk",
		"#",
		"@",
	}
	for _, expression := range cases {
		_, err := Parse(expression)
		assert.ErrorIs(t, err, store.ErrValidationFailed, "expression %q", expression)
	}
}
