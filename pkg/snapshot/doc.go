// Package snapshot stores rendered HTML.
//
// A snapshot is the serialized HTML of a rendered container, stored under a
// slash-separated name. FileStore writes files under a directory; S3Store
// writes objects under a bucket prefix. Open picks one from a target string:
//
//	store, err := snapshot.Open("s3://my-bucket/site", snapshot.S3Options{})
//	if err != nil {
//	    return err
//	}
//	err = store.Put(ctx, "index.html", container.OuterHTML())
//
// Backend failures are reported as Q150 errors; ErrNotFound and
// ErrInvalidName are returned unwrapped.
package snapshot
