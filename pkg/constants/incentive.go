// Package constants provides incentive constant definitions.
package constants

// SponsorPoolOwner is the reserved owner address (20-byte all-zero) for sponsor pool UTXOs.
// It identifies UTXOs that belong to the global sponsor incentive pool.
var SponsorPoolOwner = [20]byte{0x00}


