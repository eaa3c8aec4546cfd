// Package codec converts drawn integers into short identifiers and back.
package codec

// Encoder defines a set of methods for types implementing Encoder.
type Encoder interface {
	Encode(n uint64) (string, error)
}

// Decoder defines a set of methods for types implementing Decoder.
type Decoder interface {
	Decode(s string) (uint64, error)
}

// Codec defines a set of embedded interfaces for types implementing Codec.
type Codec interface {
	Encoder
	Decoder
}
