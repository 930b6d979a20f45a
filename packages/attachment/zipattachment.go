package attachment

import (
	"archive/zip"
	"bytes"
	"io"

	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/hashing"
)

// region ZipAttachment ////////////////////////////////////////////////////////////////////////////////////////////////

// ZipAttachment is an immutable, in-memory zip bundle. Its id is the content hash of the raw archive bytes.
type ZipAttachment struct {
	data []byte
	id   AttachmentID
}

// NewZipAttachment creates a new ZipAttachment from the given archive bytes. It fails with ErrInvalidArchive if the
// bytes do not form a readable zip archive.
func NewZipAttachment(data []byte) (*ZipAttachment, error) {
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, xerrors.Errorf("failed to open archive (%v): %w", err, ErrInvalidArchive)
	}

	return &ZipAttachment{
		data: data,
		id:   hashing.Digest(data),
	}, nil
}

// ID returns the content hash that identifies the ZipAttachment.
func (z *ZipAttachment) ID() AttachmentID {
	return z.id
}

// Size returns the size of the serialized archive in bytes.
func (z *ZipAttachment) Size() int64 {
	return int64(len(z.data))
}

// Open returns an independent reader over the raw archive bytes.
func (z *ZipAttachment) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(z.data)), nil
}

// ExtractFile returns the content of the archive entry with the given path.
func (z *ZipAttachment) ExtractFile(path string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(z.data), int64(len(z.data)))
	if err != nil {
		return nil, xerrors.Errorf("failed to open archive (%v): %w", err, ErrInvalidArchive)
	}

	for _, file := range reader.File {
		if file.Name != path {
			continue
		}

		entry, openErr := file.Open()
		if openErr != nil {
			return nil, xerrors.Errorf("failed to open entry %s: %w", path, openErr)
		}
		defer entry.Close()

		content, readErr := io.ReadAll(entry)
		if readErr != nil {
			return nil, xerrors.Errorf("failed to read entry %s: %w", path, readErr)
		}

		return content, nil
	}

	return nil, xerrors.Errorf("entry %s: %w", path, ErrFileNotFound)
}

// code contract (make sure the struct implements all required methods)
var _ Attachment = &ZipAttachment{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ContractZipAttachment ////////////////////////////////////////////////////////////////////////////////////////

// ContractZipAttachment is a ZipAttachment that carries contract code and therefore declares its uploader.
type ContractZipAttachment struct {
	ZipAttachment

	uploader string
}

// NewContractZipAttachment creates a new ContractZipAttachment from the given archive bytes and uploader identity.
func NewContractZipAttachment(data []byte, uploader string) (*ContractZipAttachment, error) {
	zipAttachment, err := NewZipAttachment(data)
	if err != nil {
		return nil, err
	}

	return &ContractZipAttachment{
		ZipAttachment: *zipAttachment,
		uploader:      uploader,
	}, nil
}

// Uploader returns the identity of the party that uploaded the attachment.
func (c *ContractZipAttachment) Uploader() string {
	return c.uploader
}

// code contract (make sure the struct implements all required methods)
var _ ContractAttachment = &ContractZipAttachment{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
