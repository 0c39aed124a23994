// Package fingerprint computes a cheap content hash over a C3D file's
// header and parameter dictionary, letting a caller detect whether a file's
// metadata changed between two reads without comparing the full dictionary
// field by field.
package fingerprint

import (
	"github.com/cespare/xxhash/v2"
	"github.com/gocap3d/c3d/group"
)

// buffer is a minimal io.Writer sink that collects one group's encoded bytes
// before they are fed to the digest.
type buffer struct{ b []byte }

func (w *buffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)

	return len(p), nil
}

// Header hashes headerBytes (the serialized Header) followed by every group
// in groups, encoded under its corresponding entry in ids, in the order
// given. Callers pass Manager.GroupIDs() order alongside Manager.Groups() so
// this package never needs to know about Manager itself.
func Header(headerBytes []byte, groups []*group.Group, ids []int) uint64 {
	d := xxhash.New()
	_, _ = d.Write(headerBytes)

	for i, g := range groups {
		var buf buffer
		_ = g.Write(int8(ids[i]), &buf) //nolint:gosec
		_, _ = d.Write(buf.b)
	}

	return d.Sum64()
}
