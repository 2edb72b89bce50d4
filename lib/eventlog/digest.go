// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a BLAKE3 keyed hash of a log's uncompressed bytes.
type Digest [32]byte

func (digest Digest) String() string { return hex.EncodeToString(digest[:]) }

// digestKey separates event log digests from any other BLAKE3 use of
// the same bytes. The value is the ASCII domain name, zero-padded to
// 32 bytes; changing it changes every digest.
var digestKey = [32]byte{
	'b', 'u', 'i', 'l', 'd', 'w', 'a', 't', 'c', 'h', '.', 'e', 'v', 'e', 'n', 't',
	'l', 'o', 'g', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func newDigester() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("eventlog: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

func sum(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// DigestBytes returns the digest of data, as a Reader over a log
// containing exactly data would report.
func DigestBytes(data []byte) Digest {
	hasher := newDigester()
	hasher.Write(data)
	return sum(hasher)
}
