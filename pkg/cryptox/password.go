package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var errMalformedHash = errors.New("cryptox: malformed hash")

// Hasher hashes and verifies secrets (passwords) using Argon2id. The pepper
// is appended to every secret before hashing and must stay stable for the
// lifetime of the stored digests.
type Hasher struct {
	Pepper string
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(secret+h.Pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify compares a plaintext secret against a PHC-style Argon2id hash.
// A digest that cannot be parsed never matches.
func (h Hasher) Verify(secret, digest string) bool {
	p, err := decodeHash(digest)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(secret+h.Pepper),
		p.salt,
		p.iterations,
		p.memory,
		p.parallelism,
		uint32(len(p.hash)), // #nosec G115 - hash length is bounded by the decoder
	)

	return subtle.ConstantTimeCompare(computed, p.hash) == 1
}

type phcParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// decodeHash parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodeHash(encoded string) (phcParams, error) {
	parts := strings.Split(encoded, "$")

	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 || parts[0] != "" {
		return phcParams{}, fmt.Errorf("%w: expected 6 parts", errMalformedHash)
	}
	if parts[1] != "argon2id" {
		return phcParams{}, fmt.Errorf("%w: not argon2id", errMalformedHash)
	}
	if parts[2] != "v=19" {
		return phcParams{}, fmt.Errorf("%w: wrong version", errMalformedHash)
	}

	var p phcParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return phcParams{}, fmt.Errorf("%w: parameters: %v", errMalformedHash, err)
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 {
		return phcParams{}, fmt.Errorf("%w: zero parameter", errMalformedHash)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return phcParams{}, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return phcParams{}, fmt.Errorf("%w: hash: %v", errMalformedHash, err)
	}
	if len(p.hash) == 0 || len(p.hash) > 1024 {
		return phcParams{}, fmt.Errorf("%w: hash length", errMalformedHash)
	}

	return p, nil
}
