package store

import (
	"encoding/hex"

	"c2clat/utils"

	"golang.org/x/crypto/sha3"
)

// Fingerprint identifies the machine shape a run was taken on so runs from
// the same box and core set group together.
func Fingerprint(cores []int, lineSize int, arch, host string) string {
	h := sha3.New256()
	h.Write([]byte(arch))
	h.Write([]byte{0})
	h.Write([]byte(host))
	h.Write([]byte{0})
	h.Write([]byte(utils.Itoa(lineSize)))
	h.Write([]byte{0})
	h.Write([]byte(utils.JoinInts(cores)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
