package notarychange

// region ComponentIndex ///////////////////////////////////////////////////////////////////////////////////////////////

// ComponentIndex addresses a serialized component within the fixed component order of a notary-change WireTransaction.
// The order is part of the wire contract and must never change: the transaction identity is a hash chain over the
// components in exactly this order.
type ComponentIndex uint8

const (
	// ComponentInputs is the position of the serialized list of input StateRefs.
	ComponentInputs ComponentIndex = iota

	// ComponentNotary is the position of the serialized incumbent notary.
	ComponentNotary

	// ComponentNewNotary is the position of the serialized successor notary.
	ComponentNewNotary

	// ComponentParametersHash is the position of the serialized network parameters hash. This component is optional;
	// when absent the transaction resolves against the default network parameters.
	ComponentParametersHash
)

// MandatoryComponentCount is the number of components a WireTransaction must at least carry.
const MandatoryComponentCount = 3

// MaxComponentCount is the number of components a WireTransaction may at most carry.
const MaxComponentCount = 4

// String returns a human readable representation of the ComponentIndex.
func (c ComponentIndex) String() string {
	switch c {
	case ComponentInputs:
		return "ComponentInputs"
	case ComponentNotary:
		return "ComponentNotary"
	case ComponentNewNotary:
		return "ComponentNewNotary"
	case ComponentParametersHash:
		return "ComponentParametersHash"
	default:
		return "ComponentIndex(unknown)"
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
