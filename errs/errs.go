// Package errs defines the sentinel errors returned by the c3d packages.
//
// Callers should compare against these with errors.Is, since most of
// them are wrapped with call-specific detail via fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrInvalidMagic is returned when the header's magic byte (offset 1) is not 80.
	ErrInvalidMagic = errors.New("c3d: invalid header magic byte")

	// ErrInvalidHeaderSize is returned when fewer than 512 bytes are available for the header.
	ErrInvalidHeaderSize = errors.New("c3d: invalid header size")

	// ErrUnsupportedProcessor is returned for a processor byte outside {84, 85, 86}.
	ErrUnsupportedProcessor = errors.New("c3d: unsupported processor type")

	// ErrUnsupportedEncoding is returned for a DEC float64 read or an ANALOG:BITS/word-width mismatch.
	ErrUnsupportedEncoding = errors.New("c3d: unsupported encoding")

	// ErrDuplicateGroupID is returned by Manager.AddGroup when the numeric id already exists.
	ErrDuplicateGroupID = errors.New("c3d: duplicate group id")

	// ErrDuplicateGroupName is returned by Manager.AddGroup when the name already exists
	// and renaming duplicates was not requested.
	ErrDuplicateGroupName = errors.New("c3d: duplicate group name")

	// ErrDuplicateParamName is returned by Group.RenameParam when the new name already exists.
	ErrDuplicateParamName = errors.New("c3d: duplicate parameter name")

	// ErrGroupNotFound is returned by Manager.RenameGroupName and Manager.RenameGroupID when the identifier does not resolve to a group.
	ErrGroupNotFound = errors.New("c3d: group not found")

	// ErrParamNotFound is returned by Group.RenameParam when the old name does not exist.
	ErrParamNotFound = errors.New("c3d: parameter not found")

	// ErrTypeMismatch is returned by a typed accessor when the parameter's
	// dimensions or bytes_per_element don't support the requested shape.
	ErrTypeMismatch = errors.New("c3d: parameter type mismatch")

	// ErrInconsistentMetadata is returned by Manager.CheckMetadata for the four
	// strict header/parameter cross-checks.
	ErrInconsistentMetadata = errors.New("c3d: inconsistent header/parameter metadata")

	// ErrNoFrames is returned by Writer.Write when no frames have been added.
	ErrNoFrames = errors.New("c3d: no frames to write")

	// ErrUnsupportedAlgorithm is returned by archive.NewCodec for an unknown Algorithm.
	ErrUnsupportedAlgorithm = errors.New("c3d: unsupported archive algorithm")
)
