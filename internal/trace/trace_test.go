package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeStage, true},
		{LevelPhase, ScopeFunction, false},
		{LevelDetail, ScopeFunction, true},
		{LevelDetail, ScopeStatement, false},
		{LevelDebug, ScopeStatement, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.ShouldEmit(tt.scope), "%s/%s", tt.level, tt.scope)
	}
}

func TestParseLevelAndMode(t *testing.T) {
	l, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, l)
	_, err = ParseLevel("loud")
	assert.ErrorContains(t, err, "invalid trace level")

	m, err := ParseMode("both")
	require.NoError(t, err)
	assert.Equal(t, ModeBoth, m)
	_, err = ParseMode("disk")
	assert.Error(t, err)

	f, err := ParseFormat("ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	ctx, stage := Start(ctx, ScopeStage, "decompile")
	_, fn := Start(ctx, ScopeFunction, "f_0")
	fn.WithExtra("steps", "3").End("ok")
	stage.End("")

	events := ring.Snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, KindSpanBegin, events[0].Kind)
	assert.Equal(t, "f_0", events[1].Name)
	assert.Equal(t, stage.ID(), events[1].ParentID)
	assert.Equal(t, map[string]string{"steps": "3"}, events[2].Extra)
	assert.Equal(t, KindSpanEnd, events[3].Kind)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Seq, events[i-1].Seq)
	}
}

func TestFilteredScopeKeepsParent(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	ctx, stage := Start(ctx, ScopeStage, "decompile")

	inner, fn := Start(ctx, ScopeFunction, "f_0")
	assert.Zero(t, fn.ID())
	assert.Equal(t, stage.ID(), CurrentSpan(inner).SpanID)
	fn.End("ignored")
	stage.End("")

	assert.Len(t, ring.Snapshot(), 2)
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeStage, Name: name})
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"c", "d", "e"}, names)
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatText)
	span := Begin(st, ScopeFunction, "f_2", 0)
	span.WithExtra("steps", "4").WithExtra("b", "1").End("ok")
	require.NoError(t, st.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "    > f_2")
	assert.Contains(t, lines[1], "< f_2 (ok) {b=1, steps=4}")
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Point(st, ScopeStage, "cache-hit", "abc", 0)
	Point(st, ScopeFunction, "filtered", "", 0)

	var got map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "point", got["kind"])
	assert.Equal(t, "stage", got["scope"])
	assert.Equal(t, "abc", got["detail"])
}

func TestNewPicksImplementation(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	require.NoError(t, err)
	require.NotNil(t, RingOf(tr))
	Point(tr, ScopeStage, "x", "", 0)
	assert.NotEmpty(t, buf.String())
	assert.Len(t, RingOf(tr).Snapshot(), 1)
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	require.NotNil(t, h)
	require.Eventually(t, func() bool { return len(ring.Snapshot()) > 0 }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()
	assert.Equal(t, KindHeartbeat, ring.Snapshot()[0].Kind)

	assert.Nil(t, StartHeartbeat(Nop, time.Millisecond))
}
