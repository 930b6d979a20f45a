package sandbox

// region TrustPolicy //////////////////////////////////////////////////////////////////////////////////////////////////

// TrustPolicy decides whether contract code from a given uploader may be loaded into a scope.
type TrustPolicy interface {
	// IsUploaderTrusted returns true if contract attachments of the given uploader may be loaded.
	IsUploaderTrusted(uploader string) bool
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region AllowListPolicy //////////////////////////////////////////////////////////////////////////////////////////////

// AllowListPolicy trusts exactly the configured set of uploaders.
type AllowListPolicy struct {
	trusted map[string]struct{}
}

// NewAllowListPolicy creates a new AllowListPolicy from the given uploader identities.
func NewAllowListPolicy(uploaders ...string) *AllowListPolicy {
	trusted := make(map[string]struct{}, len(uploaders))
	for _, uploader := range uploaders {
		trusted[uploader] = struct{}{}
	}

	return &AllowListPolicy{trusted: trusted}
}

// IsUploaderTrusted returns true if the given uploader is on the allow-list.
func (a *AllowListPolicy) IsUploaderTrusted(uploader string) bool {
	_, trusted := a.trusted[uploader]

	return trusted
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TrustAllPolicy ///////////////////////////////////////////////////////////////////////////////////////////////

// TrustAllPolicy trusts every uploader. It exists for tests and closed deployments; production configurations use an
// AllowListPolicy.
type TrustAllPolicy struct{}

// IsUploaderTrusted always returns true.
func (TrustAllPolicy) IsUploaderTrusted(string) bool {
	return true
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
