package automation

import "testing"

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	first := &countingJob{name: "draft-generation"}
	second := &countingJob{name: "auto-publish"}

	registry := NewRegistry(first, nil, second)
	registry.Register(nil)
	registry.Register(&countingJob{name: "pre-draw-reminder"})

	jobs := registry.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("jobs = %d, want 3", len(jobs))
	}
	if jobs[0].Name() != "draft-generation" || jobs[1].Name() != "auto-publish" || jobs[2].Name() != "pre-draw-reminder" {
		t.Fatalf("order = %s, %s, %s", jobs[0].Name(), jobs[1].Name(), jobs[2].Name())
	}
}
