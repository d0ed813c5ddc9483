package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

func testResult(overall float64) *entities.AnalysisResult {
	return &entities.AnalysisResult{
		Scores:      entities.FeedbackScore{Overall: overall},
		GeneratedAt: time.Now(),
	}
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := Key("transcript", entities.DepthStandard, "")

	if Key("transcript", entities.DepthStandard, "") != base {
		t.Error("identical inputs should produce identical keys")
	}
	for name, other := range map[string]string{
		"transcript": Key("different", entities.DepthStandard, ""),
		"depth":      Key("transcript", entities.DepthExpert, ""),
		"focus":      Key("transcript", entities.DepthStandard, "clarity"),
	} {
		if other == base {
			t.Errorf("changing %s should change the key", name)
		}
	}
}

func TestGetOrComputeCachesWithinTTL(t *testing.T) {
	c := NewAnalysisCache(time.Minute, 8)
	defer c.Close()

	computes := 0
	compute := func() (*entities.AnalysisResult, error) {
		computes++
		return testResult(80), nil
	}

	key := Key("transcript", entities.DepthStandard, "")
	first, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	second, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}

	if computes != 1 {
		t.Errorf("expected one compute, got %d", computes)
	}
	if first != second {
		t.Error("expected the cached pointer back")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestGetOrComputeRecomputesAfterTTL(t *testing.T) {
	c := NewAnalysisCache(20*time.Millisecond, 8)
	defer c.Close()

	computes := 0
	compute := func() (*entities.AnalysisResult, error) {
		computes++
		return testResult(float64(computes)), nil
	}

	key := Key("transcript", entities.DepthBasic, "")
	if _, err := c.GetOrCompute(context.Background(), key, compute); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	result, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if computes != 2 {
		t.Errorf("expected recompute after expiry, got %d computes", computes)
	}
	if result.Scores.Overall != 2 {
		t.Error("expected the fresh result, not the expired one")
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := NewAnalysisCache(time.Minute, 8)
	defer c.Close()

	var computes int32
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func() (*entities.AnalysisResult, error) {
		atomic.AddInt32(&computes, 1)
		close(started)
		<-release
		return testResult(55), nil
	}

	key := Key("transcript", entities.DepthStandard, "")

	var wg sync.WaitGroup
	results := make([]*entities.AnalysisResult, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrCompute(context.Background(), key, compute)
	}()

	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Second caller must wait for the in-flight compute, not start
		// its own.
		results[1], _ = c.GetOrCompute(context.Background(), key, func() (*entities.AnalysisResult, error) {
			atomic.AddInt32(&computes, 1)
			return testResult(99), nil
		})
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&computes); got != 1 {
		t.Errorf("expected a single compute, got %d", got)
	}
	if results[0] != results[1] {
		t.Error("both callers should receive the same result")
	}
}

func TestGetOrComputeWaiterHonorsContext(t *testing.T) {
	c := NewAnalysisCache(time.Minute, 8)
	defer c.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	key := Key("transcript", entities.DepthStandard, "")

	go c.GetOrCompute(context.Background(), key, func() (*entities.AnalysisResult, error) {
		close(started)
		<-release
		return testResult(10), nil
	})
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrCompute(ctx, key, func() (*entities.AnalysisResult, error) {
		return testResult(20), nil
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled for the waiter, got %v", err)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c := NewAnalysisCache(time.Minute, 8)
	defer c.Close()

	key := Key("transcript", entities.DepthStandard, "")
	if _, err := c.GetOrCompute(context.Background(), key, func() (*entities.AnalysisResult, error) {
		return nil, fmt.Errorf("transient failure")
	}); err == nil {
		t.Fatal("expected the compute error back")
	}

	result, err := c.GetOrCompute(context.Background(), key, func() (*entities.AnalysisResult, error) {
		return testResult(70), nil
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.Scores.Overall != 70 {
		t.Error("expected the fresh result after a failed compute")
	}
}

func TestEvictionPrefersExpiredThenLRU(t *testing.T) {
	c := NewAnalysisCache(time.Minute, 2)
	defer c.Close()

	for i := 0; i < 2; i++ {
		key := Key(fmt.Sprintf("transcript-%d", i), entities.DepthStandard, "")
		if _, err := c.GetOrCompute(context.Background(), key, func() (*entities.AnalysisResult, error) {
			return testResult(float64(i)), nil
		}); err != nil {
			t.Fatalf("compute failed: %v", err)
		}
	}

	// Touch entry 0 so entry 1 is the least recently used.
	if _, ok := c.Get(Key("transcript-0", entities.DepthStandard, "")); !ok {
		t.Fatal("expected entry 0 present")
	}

	key2 := Key("transcript-2", entities.DepthStandard, "")
	if _, err := c.GetOrCompute(context.Background(), key2, func() (*entities.AnalysisResult, error) {
		return testResult(2), nil
	}); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if c.Stats().Size != 2 {
		t.Errorf("expected size capped at 2, got %d", c.Stats().Size)
	}
	if _, ok := c.Get(Key("transcript-0", entities.DepthStandard, "")); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get(Key("transcript-1", entities.DepthStandard, "")); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestClearResetsEverything(t *testing.T) {
	c := NewAnalysisCache(time.Minute, 8)
	defer c.Close()

	key := Key("transcript", entities.DepthStandard, "")
	if _, err := c.GetOrCompute(context.Background(), key, func() (*entities.AnalysisResult, error) {
		return testResult(42), nil
	}); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	c.Clear()

	stats := c.Stats()
	if stats.Size != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("expected zeroed stats after clear, got %+v", stats)
	}
	if _, ok := c.Get(key); ok {
		t.Error("cleared entry should be gone")
	}
}
