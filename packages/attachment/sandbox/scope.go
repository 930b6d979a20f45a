// Package sandbox merges sets of content-addressed attachments into isolated file-resolution scopes. A scope behaves
// as if the union of the bundles were a single archive, detects conflicting content under colliding paths, and sees
// nothing of the embedding process except an explicitly configured parent scope.
package sandbox

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/axisledger/axis/packages/attachment"
	"github.com/axisledger/axis/packages/hashing"
)

// region FileScope ////////////////////////////////////////////////////////////////////////////////////////////////////

// FileScope is a virtual file-resolution scope: a mapping from entry paths to bytes. Scopes form a chain through
// their parent; a LoadingScope consults its own merged entries before delegating.
type FileScope interface {
	// Resolve returns the content stored under the given path, or false if the scope does not know the path.
	Resolve(path string) ([]byte, bool)
}

// EmptyScope is the FileScope that resolves nothing. It is the default parent of a LoadingScope.
type EmptyScope struct{}

// Resolve always reports a miss.
func (EmptyScope) Resolve(string) ([]byte, bool) {
	return nil, false
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region LoadingScope /////////////////////////////////////////////////////////////////////////////////////////////////

// metadataPrefix is the archive directory that holds per-bundle metadata exempt from collision checking.
const metadataPrefix = "meta-inf/"

type scopeEntry struct {
	content      []byte
	digest       hashing.ContentHash
	attachmentID attachment.AttachmentID
}

// LoadingScope is the isolated, merged view over a set of attachments. It is immutable after construction and safe
// for concurrent use; construction scans every bundle and is therefore cached (see ScopeCache).
type LoadingScope struct {
	attachments []attachment.Attachment
	entries     map[string]scopeEntry
	parent      FileScope
}

// BuildLoadingScope merges the given attachments into a single LoadingScope. Contract attachments from untrusted
// uploaders are rejected before any content is scanned; conflicting content under the same normalized path fails the
// construction. No partially-built scope is ever returned.
func BuildLoadingScope(attachments []attachment.Attachment, parent FileScope, trust TrustPolicy) (*LoadingScope, error) {
	if parent == nil {
		parent = EmptyScope{}
	}

	for _, att := range attachments {
		contractAttachment, isContract := att.(attachment.ContractAttachment)
		if !isContract {
			continue
		}
		if !trust.IsUploaderTrusted(contractAttachment.Uploader()) {
			return nil, &UntrustedUploaderError{
				AttachmentID: att.ID(),
				Uploader:     contractAttachment.Uploader(),
			}
		}
	}

	scope := &LoadingScope{
		attachments: attachments,
		entries:     make(map[string]scopeEntry),
		parent:      parent,
	}

	seenFingerprints := make(map[hashing.ContentHash]struct{})
	for _, att := range attachments {
		entries, err := scanAttachment(att)
		if err != nil {
			return nil, err
		}

		// an attachment whose combined content fingerprint was already merged cannot introduce anything new;
		// skipping it is an optimization only - the per-path check below stays authoritative
		fingerprint := combinedFingerprint(entries)
		if _, seen := seenFingerprints[fingerprint]; seen {
			continue
		}
		seenFingerprints[fingerprint] = struct{}{}

		if err = scope.merge(att.ID(), entries); err != nil {
			return nil, err
		}
	}

	return scope, nil
}

// Resolve returns the content stored under the given path, consulting the merged entries before the parent scope.
func (l *LoadingScope) Resolve(path string) ([]byte, bool) {
	if entry, found := l.entries[normalizePath(path)]; found {
		return entry.content, true
	}

	return l.parent.Resolve(path)
}

// Attachments returns the attachments the scope was built from, in input order.
func (l *LoadingScope) Attachments() []attachment.Attachment {
	return l.attachments
}

// EntryCount returns the number of distinct non-exempt entries in the merged scope.
func (l *LoadingScope) EntryCount() int {
	return len(l.entries)
}

func (l *LoadingScope) merge(attachmentID attachment.AttachmentID, entries map[string]scopeEntry) error {
	for path, entry := range entries {
		existing, found := l.entries[path]
		if !found {
			entry.attachmentID = attachmentID
			l.entries[path] = entry
			continue
		}
		if existing.digest == entry.digest {
			// benign duplication, the first occurrence wins
			continue
		}

		return &OverlappingAttachmentsError{
			Path:             path,
			FirstAttachment:  existing.attachmentID,
			SecondAttachment: attachmentID,
		}
	}

	return nil
}

// scanAttachment reads the full archive of the given attachment and digests every non-exempt entry. The archive
// stream is closed on every exit path.
func scanAttachment(att attachment.Attachment) (entries map[string]scopeEntry, err error) {
	stream, err := att.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open attachment %s", att.ID().Base58())
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "failed to close attachment %s", att.ID().Base58())
		}
	}()

	archiveBytes, err := io.ReadAll(stream)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read attachment %s", att.ID().Base58())
	}
	reader, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse archive of attachment %s", att.ID().Base58())
	}

	entries = make(map[string]scopeEntry)
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		normalized := normalizePath(file.Name)
		if isMetadataExempt(normalized) {
			continue
		}

		entry, openErr := file.Open()
		if openErr != nil {
			return nil, errors.Wrapf(openErr, "failed to open entry %q of attachment %s", file.Name, att.ID().Base58())
		}
		content, readErr := io.ReadAll(entry)
		entry.Close()
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "failed to read entry %q of attachment %s", file.Name, att.ID().Base58())
		}

		// a single bundle can carry the collision itself when two entry spellings normalize to one path
		digest := hashing.Digest(content)
		if existing, found := entries[normalized]; found {
			if existing.digest == digest {
				continue
			}

			return nil, &OverlappingAttachmentsError{
				Path:             normalized,
				FirstAttachment:  att.ID(),
				SecondAttachment: att.ID(),
			}
		}

		entries[normalized] = scopeEntry{
			content: content,
			digest:  digest,
		}
	}

	return entries, nil
}

// combinedFingerprint folds the sorted (path, digest) pairs of an attachment into a single hash.
func combinedFingerprint(entries map[string]scopeEntry) hashing.ContentHash {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hashes := make([]hashing.ContentHash, 0, 2*len(paths)+1)
	hashes = append(hashes, hashing.Digest(nil))
	for _, path := range paths {
		hashes = append(hashes, hashing.Digest([]byte(path)), entries[path].digest)
	}

	return hashing.Chain(hashes...)
}

// normalizePath case-folds an entry path and normalizes its separators, so that file systems that treat two spellings
// of a path as one cannot be tricked into resolving two different entries.
func normalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, `\`, "/"))
}

// isMetadataExempt reports whether a normalized path is exempt from collision checking. Manifests, signature blocks
// under the metadata directory and top-level license files legitimately differ per bundle without representing a
// semantic conflict.
func isMetadataExempt(normalized string) bool {
	if strings.HasPrefix(normalized, metadataPrefix) {
		rest := normalized[len(metadataPrefix):]
		if rest == "manifest.mf" {
			return true
		}
		for _, suffix := range []string{".sf", ".dsa", ".rsa", ".ec"} {
			if strings.HasSuffix(rest, suffix) {
				return true
			}
		}
	}

	switch normalized {
	case "license", "license.txt", "notice", "notice.txt":
		return true
	}

	return false
}

// code contract (make sure the struct implements all required methods)
var _ FileScope = &LoadingScope{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
