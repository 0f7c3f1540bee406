package wad

import (
	"encoding/hex"
	"strings"

	"github.com/go-faster/errors"
	"github.com/holiman/uint256"
)

const wordSize = 32

// EncodePairs ABI-encodes pairs as a single `(uint256,uint256)[]` argument.
func EncodePairs(pairs []Pair) []byte {
	out := make([]byte, 0, wordSize*(2+2*len(pairs)))
	out = appendWord(out, uint256.NewInt(wordSize))
	out = appendWord(out, uint256.NewInt(uint64(len(pairs))))
	for i := range pairs {
		out = appendWord(out, &pairs[i].First)
		out = appendWord(out, &pairs[i].Second)
	}
	return out
}

// EncodeWords ABI-encodes words as a single `uint256[]` or `int256[]` argument.
func EncodeWords(words []uint256.Int) []byte {
	out := make([]byte, 0, wordSize*(2+len(words)))
	out = appendWord(out, uint256.NewInt(wordSize))
	out = appendWord(out, uint256.NewInt(uint64(len(words))))
	for i := range words {
		out = appendWord(out, &words[i])
	}
	return out
}

// DecodePairs parses the output of EncodePairs.
func DecodePairs(b []byte) ([]Pair, error) {
	words, err := decodeArray(b, 2)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, len(words)/2)
	for i := range pairs {
		pairs[i] = Pair{First: words[2*i], Second: words[2*i+1]}
	}
	return pairs, nil
}

// DecodeWords parses the output of EncodeWords.
func DecodeWords(b []byte) ([]uint256.Int, error) {
	return decodeArray(b, 1)
}

// Hex renders b as a 0x-prefixed hex string.
func Hex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// ParseHex decodes a hex string with or without the 0x prefix.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode hex")
	}
	return b, nil
}

func appendWord(out []byte, w *uint256.Int) []byte {
	b := w.Bytes32()
	return append(out, b[:]...)
}

func readWord(b []byte, at int) uint256.Int {
	var w uint256.Int
	w.SetBytes(b[at : at+wordSize])
	return w
}

// decodeArray reads a dynamic array of static elements, each wordsPer words wide.
func decodeArray(b []byte, wordsPer int) ([]uint256.Int, error) {
	if len(b) < 2*wordSize || len(b)%wordSize != 0 {
		return nil, errors.Errorf("wad: abi payload of %d bytes is malformed", len(b))
	}
	offset := readWord(b, 0)
	if !offset.IsUint64() || offset.Uint64() > uint64(len(b)-wordSize) || offset.Uint64()%wordSize != 0 {
		return nil, errors.New("wad: abi array offset out of range")
	}
	start := int(offset.Uint64())
	length := readWord(b, start)
	avail := uint64((len(b) - start - wordSize) / (wordSize * wordsPer))
	if !length.IsUint64() || length.Uint64() > avail {
		return nil, errors.New("wad: abi array length out of range")
	}

	n := int(length.Uint64()) * wordsPer
	words := make([]uint256.Int, n)
	for i := 0; i < n; i++ {
		words[i] = readWord(b, start+wordSize*(i+1))
	}
	return words, nil
}
