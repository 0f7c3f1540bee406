// Command cfmmoracle evaluates batches of CFMM test vectors.
//
// Input is a JSON array (or single object) of vectors, hex-encoded or raw, given as
// the first argument, through --input, or on stdin. Output is the Solidity ABI
// encoding of the results as 0x-hex, or JSON rows with --format json. Fixed-point
// values carry CFMM_WAD_DECIMALS digits (18 by default).
//
//	cfmmoracle swap 0x5b7b22746175223a...
//	cfmmoracle dual --input vectors.json --format json
//	cfmmoracle rate < rates.json
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
