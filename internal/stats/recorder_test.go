package stats

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

func TestRecorder_DrainAndRestore(t *testing.T) {
	r := NewRecorder(10)
	r.Record("sqs", "signing-name")
	r.Record("sqs", "signing-name")
	r.Record("s3", "fallback")

	pending := r.Pending()
	assert.Equal(t, int64(2), pending.Services["sqs"])

	stats, unknown := r.Drain()
	assert.Equal(t, map[string]int64{"sqs": 2, "s3": 1}, stats.Services)
	assert.Equal(t, map[string]int64{"signing-name": 2, "fallback": 1}, stats.Stages)
	assert.Empty(t, unknown)
	assert.True(t, r.Pending().Empty())

	r.Record("s3", "fallback")
	r.Restore(stats, unknown)
	assert.Equal(t, int64(2), r.Pending().Services["s3"])
	assert.Equal(t, int64(2), r.Pending().Services["sqs"])
}

func TestRecorder_UnknownIsBounded(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 5; i++ {
		r.RecordUnknown(domain.UnknownRequest{Path: fmt.Sprintf("/%d", i)})
	}

	recent := r.RecentUnknown()
	assert.Len(t, recent, 3)
	assert.Equal(t, "/4", recent[0].Path)
	assert.Equal(t, "/2", recent[2].Path)

	_, drained := r.Drain()
	r.RecordUnknown(domain.UnknownRequest{Path: "/5"})
	r.Restore(domain.NewStats(), drained)
	recent = r.RecentUnknown()
	assert.Len(t, recent, 3)
	assert.Equal(t, "/5", recent[0].Path)
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Record("sqs", "candidates")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), r.Pending().Services["sqs"])
}
