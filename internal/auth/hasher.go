package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/frahmantamala/smartsupply/internal"
)

// ErrMalformedHash is returned by Verify when the stored value is not an argon2id PHC string.
var ErrMalformedHash = errors.New("malformed password hash")

type Argon2Params struct {
	Time       uint32
	MemoryKiB  uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:       3,
		MemoryKiB:  64 * 1024,
		Threads:    2,
		SaltLength: 16,
		KeyLength:  32,
	}
}

func Argon2ParamsFromConfig(cfg internal.Argon2Config) Argon2Params {
	return Argon2Params{
		Time:       cfg.Time,
		MemoryKiB:  cfg.MemoryKiB,
		Threads:    cfg.Threads,
		SaltLength: cfg.SaltLength,
		KeyLength:  cfg.KeyLength,
	}
}

// Argon2Hasher produces and checks argon2id hashes in the PHC string format:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>
type Argon2Hasher struct {
	params Argon2Params
	rand   io.Reader
}

func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: params, rand: rand.Reader}
}

func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the parameters embedded in encoded.
// A wrong password is (false, nil); only a malformed hash returns an error.
func (h *Argon2Hasher) Verify(encoded, plaintext string) (bool, error) {
	params, salt, key, err := decodeArgon2Hash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, params.Time, params.MemoryKiB, params.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with parameters other than the configured ones.
func (h *Argon2Hasher) NeedsRehash(encoded string) bool {
	params, salt, key, err := decodeArgon2Hash(encoded)
	if err != nil {
		return true
	}
	return params.Time != h.params.Time ||
		params.MemoryKiB != h.params.MemoryKiB ||
		params.Threads != h.params.Threads ||
		uint32(len(salt)) != h.params.SaltLength ||
		uint32(len(key)) != h.params.KeyLength
}

// Upper bounds for parameters read back from a stored hash. A tampered row must not
// be able to make Verify allocate gigabytes or spin for minutes.
const (
	maxHashMemoryKiB = 1 << 20
	maxHashTime      = 64
	maxHashBytes     = 1024
)

func decodeArgon2Hash(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return params, nil, nil, fmt.Errorf("%w: expected 6 segments", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("%w: version: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return params, nil, nil, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}
	if memory == 0 || iterations == 0 || threads == 0 {
		return params, nil, nil, fmt.Errorf("%w: zero cost parameter", ErrMalformedHash)
	}
	if memory > maxHashMemoryKiB || iterations > maxHashTime {
		return params, nil, nil, fmt.Errorf("%w: cost parameter out of range", ErrMalformedHash)
	}
	if base64.RawStdEncoding.DecodedLen(len(parts[4])) > maxHashBytes ||
		base64.RawStdEncoding.DecodedLen(len(parts[5])) > maxHashBytes {
		return params, nil, nil, fmt.Errorf("%w: salt or key too long", ErrMalformedHash)
	}
	params.MemoryKiB, params.Time, params.Threads = memory, iterations, threads

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, fmt.Errorf("%w: salt encoding", ErrMalformedHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, fmt.Errorf("%w: key encoding", ErrMalformedHash)
	}
	params.SaltLength, params.KeyLength = uint32(len(salt)), uint32(len(key))

	return params, salt, key, nil
}
