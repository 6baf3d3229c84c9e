package vuln

import (
	"context"
	"sync"
)

// fakeResolver answers from a table keyed by "TYPE name".
type fakeResolver struct {
	mu      sync.Mutex
	answers map[string][]string
	calls   map[string]int
}

func newFakeResolver(answers map[string][]string) *fakeResolver {
	return &fakeResolver{answers: answers, calls: map[string]int{}}
}

func (f *fakeResolver) Resolve(ctx context.Context, name string, t string) []string {
	key := t + " " + name
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if v, ok := f.answers[key]; ok {
		return v
	}
	return []string{}
}
