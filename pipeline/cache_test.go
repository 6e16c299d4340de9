package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestCachedPipelineServesRepeatFromCache(t *testing.T) {
	eng := newFakeEngine()
	eng.addBox("div", "cached content", 0, 0, 100, 20)

	cp := NewCachedPipeline(New(eng, nil), time.Minute, nil)
	defer cp.Close()

	raw := "<div>cache me</div>"
	first := cp.Process(context.Background(), raw, nil)
	second := cp.Process(context.Background(), raw, nil)

	if !first.Success || !second.Success {
		t.Fatal("Expected both results successful")
	}
	if len(first.Items) != len(second.Items) {
		t.Errorf("Expected identical item counts, got %d and %d", len(first.Items), len(second.Items))
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.parseCalls != 1 {
		t.Errorf("Expected 1 native parse for repeated input, got %d", eng.parseCalls)
	}
}

func TestCachedPipelineDistinctInputsBothProcessed(t *testing.T) {
	eng := newFakeEngine()
	eng.addBox("div", "content", 0, 0, 100, 20)

	cp := NewCachedPipeline(New(eng, nil), time.Minute, nil)
	defer cp.Close()

	cp.Process(context.Background(), "<div>first</div>", nil)
	cp.Process(context.Background(), "<div>second</div>", nil)

	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.parseCalls != 2 {
		t.Errorf("Expected 2 native parses for distinct inputs, got %d", eng.parseCalls)
	}
}

func TestCachedPipelineDoesNotCacheRejectedInput(t *testing.T) {
	eng := newFakeEngine()
	cp := NewCachedPipeline(New(eng, nil), time.Minute, nil)
	defer cp.Close()

	first := cp.Process(context.Background(), "", nil)
	second := cp.Process(context.Background(), "", nil)

	if first.Success || second.Success {
		t.Error("Expected rejection for empty input on both calls")
	}
}

func TestCachedPipelineProgressFiresOnCacheHit(t *testing.T) {
	eng := newFakeEngine()
	eng.addBox("div", "content", 0, 0, 100, 20)

	cp := NewCachedPipeline(New(eng, nil), time.Minute, nil)
	defer cp.Close()

	raw := "<div>progress</div>"
	cp.Process(context.Background(), raw, nil)

	var last float64
	cp.Process(context.Background(), raw, func(f float64) { last = f })

	if last != 1.0 {
		t.Errorf("Expected completion progress on cache hit, got %f", last)
	}
}
