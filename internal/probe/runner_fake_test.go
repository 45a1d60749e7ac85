package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

type fakeResult struct {
	out string
	err error
}

type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(map[string]fakeResult)}
}

func (f *fakeRunner) on(cmdline, out string) *fakeRunner {
	f.results[cmdline] = fakeResult{out: out}
	return f
}

func (f *fakeRunner) fail(cmdline string, err error) *fakeRunner {
	f.results[cmdline] = fakeResult{err: err}
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{filepath.Base(name)}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)

	r, ok := f.results[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, exec.ErrNotFound)
	}
	return []byte(r.out), r.err
}

var errExit = errors.New("exit status 1")
