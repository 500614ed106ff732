package polyval

// FNV-1a parameters used by the original system: the standard 32-bit FNV
// offset basis and prime, kept for on-disk compatibility with existing
// fingerprints.
const (
	fnvSeed  uint32 = 0x811C9DC5
	fnvPrime uint32 = 0x01000193
)

// Fingerprint computes a 32-bit FNV-1a hash over the canonical string form
// of v. Equal canonical strings always yield equal fingerprints (P4); the
// converse need not hold, which is why the dedup filter double-checks with
// a full string compare.
func Fingerprint(v Value) int32 {
	return FingerprintString(CanonicalString(v))
}

// FingerprintString hashes a string directly, for callers that already hold
// a canonical rendering.
func FingerprintString(s string) int32 {
	hash := fnvSeed
	for i := 0; i < len(s); i++ {
		hash = (hash ^ uint32(s[i])) * fnvPrime
	}
	return int32(hash)
}
