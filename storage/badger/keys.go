package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/bioorbit/core"
)

// Key prefixes for different data types. Each ends in ':' so that no
// prefix is a prefix of another.
const (
	candidatePrefix      = "cand:"
	candidateOrderPrefix = "candord:"
	candidateSeq         = "candseq"
)

// makeCandidateKey generates a key for a candidate by ID.
func makeCandidateKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", candidatePrefix, id))
}

// makeCandidateOrderKey generates the insertion-order index key.
// Format: prefix:position
func makeCandidateOrderKey(position uint64) []byte {
	buf := make([]byte, len(candidateOrderPrefix)+8)
	offset := copy(buf, candidateOrderPrefix)
	// BigEndian so lexicographic order matches insertion order
	binary.BigEndian.PutUint64(buf[offset:], position)
	return buf
}
