// Package security contains everything related to the security of user data
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrHashFormat = errors.New("invalid hash format")

// ArgonHash holds the argon2id cost parameters. Stored hashes carry their
// own parameters so changing these only affects new hashes.
type ArgonHash struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// New returns the parameters used for stored password hashes
func New() *ArgonHash {
	return &ArgonHash{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// encodedHash is a PHC string taken apart,
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type encodedHash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (a *ArgonHash) GenerateFromPassword(p string) (string, error) {
	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	h := encodedHash{
		memory:      a.Memory,
		iterations:  a.Iterations,
		parallelism: a.Parallelism,
		salt:        salt,
		key:         argon2.IDKey([]byte(p), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength),
	}

	return h.String(), nil
}

// VerifyPasswd compares a password p with the stored encoded hash e
func (a *ArgonHash) VerifyPasswd(p, e string) (bool, error) {
	h, err := decodeHash(e)
	if err != nil {
		return false, err
	}

	calc := argon2.IDKey([]byte(p), h.salt, h.iterations, h.memory, h.parallelism, uint32(len(h.key)))

	return subtle.ConstantTimeCompare(h.key, calc) == 1, nil
}

// NeedsRehash reports whether e was made with other cost parameters than a.
// Unreadable hashes always need one.
func (a *ArgonHash) NeedsRehash(e string) bool {
	h, err := decodeHash(e)
	if err != nil {
		return true
	}

	return h.memory != a.Memory ||
		h.iterations != a.Iterations ||
		h.parallelism != a.Parallelism ||
		uint32(len(h.salt)) != a.SaltLength ||
		uint32(len(h.key)) != a.KeyLength
}

func (h encodedHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.iterations, h.parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func decodeHash(e string) (*encodedHash, error) {
	parts := strings.Split(e, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrHashFormat
	}

	var h encodedHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.iterations, &h.parallelism); err != nil {
		return nil, ErrHashFormat
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, ErrHashFormat
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return nil, ErrHashFormat
	}

	return &h, nil
}
