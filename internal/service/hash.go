package service

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
)

// contentHash is the dedup key of an upload: hex SHA-256 of the bytes.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
