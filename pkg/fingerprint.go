package pkg

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ContentID returns the CIDv1 (raw codec, sha2-256) of data as a string.
func ContentID(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// Only reachable with an unknown hash code or a bad length.
		return ""
	}

	return cid.NewCidV1(cid.Raw, sum).String()
}

// VerifyContentID reports whether id is the content identifier of data.
func VerifyContentID(id string, data []byte) (bool, error) {
	parsed, err := cid.Decode(id)
	if err != nil {
		return false, fmt.Errorf("decode content id %q: %w", id, err)
	}

	sum, err := multihash.Sum(data, parsed.Prefix().MhType, -1)
	if err != nil {
		return false, fmt.Errorf("hash content: %w", err)
	}

	return parsed.Equals(cid.NewCidV1(parsed.Prefix().Codec, sum)), nil
}
