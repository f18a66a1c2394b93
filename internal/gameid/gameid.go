// Package gameid issues table identifiers: a UUIDv7 rendered as 26
// lowercase Crockford base32 characters, so ids sort by creation time.
package gameid

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the size of every encoded id.
const Length = 26

// Generator issues ids from a random source. The zero value uses crypto/rand.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator reading randomness from r. A nil reader
// means crypto/rand; tests pass a seeded reader for repeatable ids.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new id from crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new id. It panics only if the random source fails.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g == nil || g.rand == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewV7FromReader(g.rand)
	}
	if err != nil {
		panic("gameid: failed to generate uuid: " + err.Error())
	}
	return encodeBase32(id)
}

// encodeBase32 encodes 128 bits as 26 characters, padding two zero bits at
// the front so the first character is always 0-7.
func encodeBase32(data [16]byte) string {
	result := make([]byte, Length)
	var acc uint32
	bits := 2
	pos := 0
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			result[pos] = alphabet[(acc>>bits)&0x1f]
			pos++
		}
	}
	return string(result)
}

// Parse decodes an id back to its UUID.
func Parse(id string) (uuid.UUID, error) {
	var out uuid.UUID
	if err := Validate(id); err != nil {
		return out, err
	}
	var acc uint32
	bits := 0
	pos := 0
	for i := 0; i < Length; i++ {
		acc = acc<<5 | uint32(strings.IndexByte(alphabet, id[i]))
		bits += 5
		if i == 0 {
			// Drop the two padding bits.
			bits -= 2
			acc &= 0x07
		}
		if bits >= 8 {
			bits -= 8
			out[pos] = byte(acc >> bits)
			pos++
		}
	}
	return out, nil
}

// CreatedAt returns the millisecond timestamp embedded in the id.
func CreatedAt(id string) (time.Time, error) {
	u, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	if u.Version() != 7 {
		return time.Time{}, fmt.Errorf("game ID is uuid version %d, not 7", u.Version())
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
