//go:build !cgo

package graph

import "errors"

var errKuzuUnavailable = errors.New("kuzu: store requires a cgo build")

// NewKuzuStore reports that KuzuDB is unavailable without cgo.
func NewKuzuStore() (Store, error) {
	return nil, errKuzuUnavailable
}

// NewKuzuFileStore reports that KuzuDB is unavailable without cgo.
func NewKuzuFileStore(string) (Store, error) {
	return nil, errKuzuUnavailable
}
