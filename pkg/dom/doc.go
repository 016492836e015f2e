// Package dom provides the in-memory host document that quark renders into.
//
// The document models the subset of the browser DOM the reconciler relies on:
// element, text and fragment nodes linked as a sibling list, ordered
// attributes, live IDL properties (value, checked, className, ...), inline
// styles, event listeners with capture and bubble phases, innerHTML parsing
// and serialization, and custom-element reactions (connected, disconnected,
// attributeChanged) for upgraded tags.
//
// # Mutation records
//
// Every write through the public API emits a Mutation to the document's
// observers and bumps MutationCount. Writes are never suppressed at this
// layer, so a caller that issues an identical SetAttribute twice produces two
// records. The reconciler is responsible for not issuing redundant writes;
// tests and the devtools server observe the records to verify that.
//
// # Threading
//
// A Document and its nodes are not safe for concurrent use. All access must
// happen on the goroutine that drives the owning event loop.
package dom
