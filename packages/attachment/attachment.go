// Package attachment models content-addressed, immutable code bundles that transactions reference by hash. An
// attachment is created by storage once and then shared read-only by any number of transactions and loading scopes.
package attachment

import (
	"errors"
	"io"

	"github.com/axisledger/axis/packages/hashing"
)

// AttachmentID is the content hash that identifies an Attachment.
type AttachmentID = hashing.ContentHash

var (
	// ErrFileNotFound is returned if a requested file is not part of an attachment.
	ErrFileNotFound = errors.New("file not found in attachment")

	// ErrInvalidArchive is returned if the bytes of an attachment do not form a readable archive.
	ErrInvalidArchive = errors.New("attachment is not a valid archive")
)

// Attachment is a named, content-addressed, immutable code bundle. Implementations must be safe for concurrent use:
// every Open call returns an independent reader.
type Attachment interface {
	// ID returns the content hash that identifies the Attachment.
	ID() AttachmentID

	// Size returns the size of the serialized attachment in bytes.
	Size() int64

	// Open returns a reader over the raw archive bytes. The caller must close it.
	Open() (io.ReadCloser, error)

	// ExtractFile returns the content of the archive entry with the given path.
	ExtractFile(path string) ([]byte, error)
}

// ContractAttachment is an Attachment that carries executable contract code. It additionally declares the identity of
// the party that uploaded it, which the loading sandbox checks against the trusted-uploader allow-list.
type ContractAttachment interface {
	Attachment

	// Uploader returns the identity of the party that uploaded the attachment.
	Uploader() string
}
