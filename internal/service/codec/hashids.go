package codec

import (
	"fmt"
	"math"

	"github.com/speps/go-hashids/v2"

	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
)

// Check interface implementation explicitly
var (
	_ Codec = (*Hashids)(nil)
)

// Hashids obfuscates drawn integers with a salt so that consecutive values look unrelated.
type Hashids struct {
	hashID *hashids.HashID
}

// NewHashids builds a codec from a salt and an alphabet of at least 16 distinct symbols.
func NewHashids(salt, alphabet string, minLength int) (*Hashids, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	if alphabet != "" {
		hd.Alphabet = alphabet
	}
	hashID, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, &serviceErrors.ServiceInitHashError{Msg: err.Error()}
	}
	return &Hashids{hashID: hashID}, nil
}

// Encode obfuscates n.
func (h *Hashids) Encode(n uint64) (string, error) {
	if n > math.MaxInt64 {
		return "", &serviceErrors.ServiceEncodingHashError{Msg: fmt.Sprintf("%d exceeds the hashids range", n)}
	}
	s, err := h.hashID.EncodeInt64([]int64{int64(n)})
	if err != nil {
		return "", &serviceErrors.ServiceEncodingHashError{Msg: err.Error()}
	}
	return s, nil
}

// Decode recovers the integer obfuscated by Encode.
func (h *Hashids) Decode(s string) (uint64, error) {
	numbers, err := h.hashID.DecodeInt64WithError(s)
	if err != nil {
		return 0, &serviceErrors.ServiceEncodingHashError{Msg: err.Error()}
	}
	if len(numbers) != 1 || numbers[0] < 0 {
		return 0, &serviceErrors.ServiceEncodingHashError{Msg: fmt.Sprintf("%q does not hold a single identifier", s)}
	}
	return uint64(numbers[0]), nil
}
