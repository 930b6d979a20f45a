package sandbox

import (
	"github.com/iotaledger/hive.go/configuration"
)

// Parameters contains configuration parameters used by the attachment loading sandbox.
var Parameters = struct {
	// CacheSize is the maximum number of loading scopes retained in the process-wide cache.
	CacheSize int `default:"32" usage:"maximum number of attachment loading scopes kept in memory"`

	// TrustedUploaders is the list of uploader identities whose contract attachments may be loaded.
	TrustedUploaders []string `usage:"list of uploader identities whose contract attachments may be loaded"`
}{}

func init() {
	configuration.BindParameters(&Parameters, "sandbox")
}
