// Package watch polls tree description files for changes.
//
// The devtools server uses it to re-render a description when it is edited:
//
//	w := watch.New(watch.Config{Paths: []string{"page.yaml"}})
//	w.OnChange(func(changes []watch.Change) { rerender() })
//	go w.Start(ctx)
package watch
