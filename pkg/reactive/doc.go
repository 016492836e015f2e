// Package reactive implements quark's dependency graph and scheduler.
//
// The model has three parts:
//
//   - Slots are observable cells. Reading a slot inside a running Watcher
//     subscribes that watcher; Notify informs every live subscriber.
//   - Watchers are computations (component renders, computed getters, user
//     callbacks) that re-collect their dependency set on every run and drop
//     subscriptions they no longer read.
//   - The Scheduler coalesces watcher updates into a single FIFO flush that
//     runs as a microtask on the runtime's Loop, so N synchronous writes in
//     one task produce one re-run after the task completes.
//
// # Tracking context
//
// There is no package-level "current watcher". Each Runtime carries its own
// stack of running watchers, pushed and popped around every evaluation, so
// nested computed evaluation inside a render restores the outer watcher on
// return.
//
// # Lifetimes
//
// Slots hold their subscribers through weak pointers. A watcher that is no
// longer referenced by its owner is pruned the next time the slot notifies;
// a watcher that has been torn down is pruned the same way.
//
// # Threading
//
// A Runtime is single-threaded. All slots, watchers and the scheduler must be
// used from the goroutine that drives the runtime's Loop. Loop.Post and
// Loop.Call are the only goroutine-safe entry points.
package reactive
