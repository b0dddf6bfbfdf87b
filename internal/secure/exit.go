package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

var exitHooks = struct {
	sync.Mutex
	next  int
	hooks map[int]func()
}{hooks: map[int]func(){}}

// OnExit registers fn to run when Exit is called, newest first.
// The returned function removes the hook again.
func OnExit(fn func()) (cancel func()) {
	exitHooks.Lock()
	defer exitHooks.Unlock()

	id := exitHooks.next
	exitHooks.next++
	exitHooks.hooks[id] = fn

	return func() {
		exitHooks.Lock()
		defer exitHooks.Unlock()
		delete(exitHooks.hooks, id)
	}
}

// Exit runs the registered hooks, wipes every enclave and exits with code
func Exit(code int) {
	RunExitHooks()
	memguard.SafeExit(code)
}

// RunExitHooks runs and removes every registered hook
func RunExitHooks() {
	exitHooks.Lock()
	pending := exitHooks.hooks
	last := exitHooks.next
	exitHooks.hooks = map[int]func(){}
	exitHooks.Unlock()

	for id := last - 1; id >= 0 && len(pending) > 0; id-- {
		if fn, ok := pending[id]; ok {
			delete(pending, id)
			fn()
		}
	}
}
