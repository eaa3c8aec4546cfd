package codec

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Check interface implementation explicitly
var (
	_ Codec = (*Bijective)(nil)
)

// forbidden are symbols with structural meaning inside a URL path.
const forbidden = "/.?#%"

type (
	InvalidAlphabetError struct {
		Msg string
	}
	InvalidSymbolError struct {
		Symbol rune
		Input  string
	}
	OverflowError struct {
		Input string
	}
)

func (e *InvalidAlphabetError) Error() string {
	return "invalid alphabet: " + e.Msg
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("%q: symbol %q is not in the alphabet", e.Input, e.Symbol)
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%q: identifier exceeds the integer range", e.Input)
}

// Bijective is a bijective base-N numeration over a configured alphabet: every non-negative integer
// has exactly one representation and every non-empty string over the alphabet decodes to exactly
// one integer. 0 encodes to the first symbol, N-1 to the last one, N to two first symbols.
type Bijective struct {
	symbols []rune
	index   map[rune]uint64
}

// NewBijective validates the alphabet and builds a codec over it.
func NewBijective(alphabet string) (*Bijective, error) {
	if !utf8.ValidString(alphabet) {
		return nil, &InvalidAlphabetError{Msg: "not valid UTF-8"}
	}
	symbols := []rune(alphabet)
	index := make(map[rune]uint64, len(symbols))
	for i, r := range symbols {
		if strings.ContainsRune(forbidden, r) || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return nil, &InvalidAlphabetError{Msg: fmt.Sprintf("symbol %q is not allowed", r)}
		}
		if _, dup := index[r]; dup {
			return nil, &InvalidAlphabetError{Msg: fmt.Sprintf("symbol %q is repeated", r)}
		}
		index[r] = uint64(i)
	}
	if len(symbols) < 2 {
		return nil, &InvalidAlphabetError{Msg: "at least 2 distinct symbols required"}
	}
	return &Bijective{symbols: symbols, index: index}, nil
}

// Encode converts n into its bijective base-N representation.
func (b *Bijective) Encode(n uint64) (string, error) {
	if n == math.MaxUint64 {
		return "", &OverflowError{Input: fmt.Sprint(n)}
	}
	base := uint64(len(b.symbols))
	var out []rune
	for n >= base {
		out = append(out, b.symbols[n%base])
		n = n/base - 1
	}
	out = append(out, b.symbols[n])
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// Decode converts a representation produced by Encode back into the integer.
func (b *Bijective) Decode(s string) (uint64, error) {
	if s == "" {
		return 0, &InvalidSymbolError{Input: s}
	}
	base := uint64(len(b.symbols))
	var n uint64
	for _, r := range s {
		idx, ok := b.index[r]
		if !ok {
			return 0, &InvalidSymbolError{Symbol: r, Input: s}
		}
		if n > (math.MaxUint64-idx-1)/base {
			return 0, &OverflowError{Input: s}
		}
		n = n*base + idx + 1
	}
	return n - 1, nil
}
