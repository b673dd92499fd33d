package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/dupes/internal/stats"
)

func TestRateView_ViewRendersCounters(t *testing.T) {
	c := stats.NewCollector()
	c.AddFilesWalked(1500)
	c.AddFullHashed(12)
	c.AddBytesHashed(3 * 1024 * 1024)
	c.Tick()

	out := rateView{}.view(80, c.Snapshot(), c, 8)
	assert.Contains(t, out, "3.0 MiB/s")
	assert.Contains(t, out, "3.0 MiB hashed")
	assert.Contains(t, out, "8 workers")
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "1,512 files/s")
}

func TestRateView_NarrowWidth(t *testing.T) {
	c := stats.NewCollector()
	out := rateView{}.view(5, c.Snapshot(), c, 1)
	assert.NotEmpty(t, out)
}
