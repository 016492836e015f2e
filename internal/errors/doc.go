// Package errors provides quark's coded errors.
//
// Every diagnostic the runtime or CLI can produce has a registered code
// (Q001, Q120, ...) with a category, a short message, a longer explanation
// and, where one exists, a fix hint:
//
//	err := errors.New("Q021").WithLocation("page.yaml", 12, 5)
//	errors.PrintError(os.Stderr, err)
//
// # Categories
//
//   - render: reconciler diagnostics (foreign nodes, render panics, runaway
//     renders, ref failures, duplicate keys)
//   - reactive: scheduler diagnostics (circular updates, callback panics)
//   - decode: tree description errors
//   - config: quark.json errors
//   - snapshot: snapshot storage errors
//   - cli: command-line errors
//
// Render and reactive errors are never returned from the render pipeline.
// They are handed to hooks and logged in debug mode; a broken subtree
// degrades instead of aborting the render.
//
// Colors are enabled when stderr is a terminal.
package errors
