package chain

import (
	"encoding/binary"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// DeploySalt derives the CREATE2 salt passed to executeDeployTransaction: the
// first four bytes of keccak256(index || unix millis), read as a big-endian uint32.
func DeploySalt(index uint64, now time.Time) *big.Int {
	input := strconv.FormatUint(index, 10) + strconv.FormatInt(now.UnixMilli(), 10)
	hash := crypto.Keccak256([]byte(input))
	return new(big.Int).SetUint64(uint64(binary.BigEndian.Uint32(hash[:4])))
}
