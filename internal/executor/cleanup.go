package executor

import (
	"context"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
)

// pushCleanup registers a destroy function to run when the run ends.
func (e *Executor) pushCleanup(fn func()) {
	e.cleanupMu.Lock()
	defer e.cleanupMu.Unlock()
	e.cleanupStack = append(e.cleanupStack, fn)
}

// executeCleanupStack runs registered destroy functions in LIFO order.
func (e *Executor) executeCleanupStack(ctx context.Context) {
	e.cleanupMu.Lock()
	stack := e.cleanupStack
	e.cleanupStack = nil
	e.cleanupMu.Unlock()

	if len(stack) == 0 {
		return
	}
	ctxlog.FromContext(ctx).Debug("Running resource cleanup.", "count", len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		stack[i]()
	}
}
