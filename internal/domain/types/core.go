package types

// DID is the textual identifier naming an identity record.
type DID string

// String returns the string form of the identifier.
func (d DID) String() string { return string(d) }

// Owner identifies the principal controlling an identity.
type Owner string

// String returns the string form of the owner.
func (o Owner) String() string { return string(o) }

// ContentAddress is the identifier a pinning service returns for stored bytes.
type ContentAddress string

// String returns the string form of the content address.
func (a ContentAddress) String() string { return string(a) }
