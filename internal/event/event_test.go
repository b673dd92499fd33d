package event

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		want  string
		phase Phase
	}{
		{want: "Scanning", phase: Scanning},
		{want: "PartialHash", phase: PartialHash},
		{want: "FullHash", phase: FullHash},
		{want: "Complete", phase: Complete},
		{want: "Trashing", phase: Trashing},
		{want: "Deleting", phase: Deleting},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.phase.String())
		})
	}
}

func TestPhaseStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Phase(999).String())
	assert.Equal(t, "Unknown", Phase(0).String())
}

func TestProgressJSON(t *testing.T) {
	b, err := json.Marshal(Progress{Phase: PartialHash, Current: 10, Total: 120})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"PartialHash","current":10,"total":120}`, string(b))

	var p Progress
	require.NoError(t, json.Unmarshal([]byte(`{"phase":"FullHash","current":5,"total":7}`), &p))
	assert.Equal(t, FullHash, p.Phase)
	assert.Equal(t, uint64(5), p.Current)
	assert.Equal(t, uint64(7), p.Total)
}

func TestPhaseUnmarshalUnknown(t *testing.T) {
	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("Sleeping")))
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	ch := make(chan Progress, 1)
	sink := ChannelSink(ch)

	sink.Progress(Progress{Phase: Scanning, Current: 100})
	sink.Progress(Progress{Phase: Scanning, Current: 200}) // dropped, must not block

	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, uint64(100), got.Current)
	assert.False(t, got.Timestamp.IsZero())
}

func TestChannelSinkNil(t *testing.T) {
	var sink ChannelSink
	assert.NotPanics(t, func() { sink.Progress(Progress{Phase: Complete}) })
}

func TestTee(t *testing.T) {
	var mu sync.Mutex
	var a, b []Progress
	sink := Tee(
		SinkFunc(func(p Progress) { mu.Lock(); a = append(a, p); mu.Unlock() }),
		nil,
		SinkFunc(func(p Progress) { mu.Lock(); b = append(b, p); mu.Unlock() }),
	)

	sink.Progress(Progress{Phase: FullHash, Current: 1, Total: 2})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	assert.Equal(t, FullHash, a[0].Phase)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Progress(Progress{Phase: Scanning}) })
}
