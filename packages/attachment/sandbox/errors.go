package sandbox

import (
	"fmt"

	"github.com/axisledger/axis/packages/attachment"
)

// region OverlappingAttachmentsError //////////////////////////////////////////////////////////////////////////////////

// OverlappingAttachmentsError is returned if two attachments of a loading scope carry different content under the
// same (normalized) entry path. The collision is security-significant: resolving either entry would let one bundle
// substitute code of the other.
type OverlappingAttachmentsError struct {
	Path             string
	FirstAttachment  attachment.AttachmentID
	SecondAttachment attachment.AttachmentID
}

// Error returns a human readable representation of the OverlappingAttachmentsError.
func (o *OverlappingAttachmentsError) Error() string {
	return fmt.Sprintf("attachments %s and %s overlap at path %q with different content", o.FirstAttachment.Base58(), o.SecondAttachment.Base58(), o.Path)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region UntrustedUploaderError ///////////////////////////////////////////////////////////////////////////////////////

// UntrustedUploaderError is returned if a contract attachment declares an uploader that is not on the trusted-uploader
// allow-list. The scope is rejected before any content is scanned.
type UntrustedUploaderError struct {
	AttachmentID attachment.AttachmentID
	Uploader     string
}

// Error returns a human readable representation of the UntrustedUploaderError.
func (u *UntrustedUploaderError) Error() string {
	return fmt.Sprintf("contract attachment %s was uploaded by untrusted party %q", u.AttachmentID.Base58(), u.Uploader)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
