package cryptocache

import (
	"crypto/sha256"
	"encoding/binary"
)

// ConcatKDF implements the single-round-hash key derivation function of
// NIST SP 800-56A §5.8.1, specialized to SHA-256 the way RFC 7518 §4.6.2
// requires for ECDH-ES: each round hashes a 4-byte big-endian counter,
// the shared secret z, and otherInfo, and the rounds are concatenated and
// truncated to keyLen bytes. otherInfo is AlgorithmID || PartyUInfo ||
// PartyVInfo || SuppPubInfo, each already length-prefixed by the caller
// except SuppPubInfo (the 4-byte keydatalen-in-bits this function adds
// itself).
func ConcatKDF(z []byte, keyLen int, algID, apu, apv []byte) []byte {
	suppPubInfo := make([]byte, 4)
	binary.BigEndian.PutUint32(suppPubInfo, uint32(keyLen)*8)

	otherInfo := make([]byte, 0, len(algID)+len(apu)+len(apv)+len(suppPubInfo))
	otherInfo = append(otherInfo, algID...)
	otherInfo = append(otherInfo, lengthPrefixed(apu)...)
	otherInfo = append(otherInfo, lengthPrefixed(apv)...)
	otherInfo = append(otherInfo, suppPubInfo...)

	out := make([]byte, 0, keyLen)
	var counter uint32 = 1
	for len(out) < keyLen {
		h := sha256.New()
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], counter)
		h.Write(ctr[:])
		h.Write(z)
		h.Write(otherInfo)
		out = append(out, h.Sum(nil)...)
		counter++
	}
	return out[:keyLen]
}

func lengthPrefixed(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(out, uint32(len(b)))
	copy(out[4:], b)
	return out
}
