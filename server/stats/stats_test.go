package stats

import (
	"sync"
	"testing"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.RecordIngest("rule", false, false)
	c.RecordIngest("model", true, true)
	c.RecordIngest("none", true, false)

	snap := c.GetSnapshot()
	if snap.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", snap.TotalMessages)
	}
	if snap.RulePath != 1 || snap.ModelPath != 1 || snap.NoEvent != 1 {
		t.Errorf("path counts = %d/%d/%d, want 1/1/1", snap.RulePath, snap.ModelPath, snap.NoEvent)
	}
	if snap.ModelCalls != 2 {
		t.Errorf("ModelCalls = %d, want 2", snap.ModelCalls)
	}
	if snap.FlaggedReview != 1 {
		t.Errorf("FlaggedReview = %d, want 1", snap.FlaggedReview)
	}
	if snap.LastIngestAt.IsZero() {
		t.Error("LastIngestAt not set")
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordIngest("rule", false, false)
		}()
	}
	wg.Wait()
	if got := c.GetSnapshot().TotalMessages; got != 50 {
		t.Errorf("TotalMessages = %d, want 50", got)
	}
}
