package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sierradec/internal/pipeline"
)

func newModel(t *testing.T) *progressModel {
	t.Helper()
	m, ok := NewProgressModel("prog.sierra", make(chan pipeline.Event)).(*progressModel)
	require.True(t, ok)
	return m
}

func send(m *progressModel, ev pipeline.Event) {
	m.Update(eventMsg(ev))
}

func TestProgress_RowsAppearWhenQueued(t *testing.T) {
	m := newModel(t)
	send(m, pipeline.Event{Stage: pipeline.StageDecompile, Status: pipeline.StatusWorking})
	send(m, pipeline.Event{Func: "f_0", Stage: pipeline.StageDecompile, Status: pipeline.StatusQueued})
	send(m, pipeline.Event{Func: "f_1", Stage: pipeline.StageDecompile, Status: pipeline.StatusQueued})
	send(m, pipeline.Event{Func: "f_0", Stage: pipeline.StageDecompile, Status: pipeline.StatusDone, Elapsed: time.Millisecond})

	require.Len(t, m.items, 2)
	assert.Equal(t, pipeline.StatusDone, m.items[0].status)
	assert.Equal(t, pipeline.StatusQueued, m.items[1].status)
	assert.Equal(t, 1, m.finished)

	view := m.View()
	assert.Contains(t, view, "prog.sierra (decompiling)")
	assert.Contains(t, view, "f_0")
	assert.Contains(t, view, "f_1")
	assert.Contains(t, view, "1/2 functions")
}

func TestProgress_FailuresCountedOnce(t *testing.T) {
	m := newModel(t)
	send(m, pipeline.Event{Func: "f_3", Status: pipeline.StatusQueued})
	send(m, pipeline.Event{Func: "f_3", Status: pipeline.StatusError})
	send(m, pipeline.Event{Func: "f_3", Status: pipeline.StatusError})

	assert.Equal(t, 1, m.finished)
	assert.Equal(t, 1, m.failed)
	assert.Contains(t, m.View(), "1/1 functions, 1 failed")
}

func TestProgress_VisibleKeepsFailures(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 30; i++ {
		send(m, pipeline.Event{Func: fmt.Sprintf("f_%d", i), Status: pipeline.StatusQueued})
	}
	for i := 0; i < 25; i++ {
		st := pipeline.StatusDone
		if i == 2 {
			st = pipeline.StatusError
		}
		send(m, pipeline.Event{Func: fmt.Sprintf("f_%d", i), Status: st})
	}

	rows := m.visible()
	require.Len(t, rows, maxRows)
	assert.Equal(t, "f_2", rows[0].name)
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.name)
	}
	// the failure, the newest finished rows, then everything pending
	assert.Equal(t, []string{"f_2", "f_21", "f_22", "f_23", "f_24", "f_25", "f_26", "f_27", "f_28", "f_29"}, names)
}

func TestProgress_CachedAndDone(t *testing.T) {
	m := newModel(t)
	send(m, pipeline.Event{Stage: pipeline.StageLoad, Status: pipeline.StatusCached})
	assert.Contains(t, m.View(), "loaded from cache")

	_, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.True(t, strings.HasPrefix(stripANSI(m.View()), "done: prog.sierra"))
}

func TestProgress_WindowResize(t *testing.T) {
	m := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Equal(t, 40, m.width)
	assert.Equal(t, 36, m.prog.Width)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "core::a...", truncate("core::array::append", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	// wide runes take two cells
	assert.Equal(t, "日本...", truncate("日本語テキスト", 7))
}

func stripANSI(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			esc = true
		case esc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				esc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
