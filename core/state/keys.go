package state

import (
	"encoding/binary"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	pointCurrencyPrefix = []byte("point/currency/")
	pointBalancePrefix  = []byte("point/balance/")
	paramsPrefix        = []byte("params/")
	emitStatPrefix      = []byte("emit/stat/")

	mosaicPrefix      = []byte("gallery/mosaic/")
	gemPrefix         = []byte("gallery/gem/")
	gemByMosaicPrefix = []byte("gallery/gem-by-mosaic/")
	gemSeqPrefix      = []byte("gallery/gem-seq/")
	inclusionPrefix   = []byte("gallery/inclusion/")
	provisionPrefix   = []byte("gallery/provision/")
	advicePrefix      = []byte("gallery/advice/")
	slapPrefix        = []byte("gallery/slap/")
	galleryStatPrefix = []byte("gallery/stat/")

	vertexPrefix = []byte("publication/vertex/")
)

// scope hashes the community symbol so every record family of one
// community shares a fixed-width prefix.
func scope(symbol string) []byte {
	return ethcrypto.Keccak256([]byte(strings.ToUpper(symbol)))[:8]
}

func hashed(parts ...string) []byte {
	return ethcrypto.Keccak256([]byte(strings.Join(parts, "\x00")))
}

func concat(chunks ...[]byte) []byte {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	out := make([]byte, 0, size)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func be64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func pointCurrencyKey(symbol string) []byte {
	return concat(pointCurrencyPrefix, scope(symbol))
}

func pointBalanceKey(symbol, owner string) []byte {
	return concat(pointBalancePrefix, scope(symbol), hashed(owner))
}

func paramsKey(name string) []byte {
	return concat(paramsPrefix, hashed(name))
}

func emitStatKey(symbol string) []byte {
	return concat(emitStatPrefix, scope(symbol))
}

func mosaicScope(symbol string) []byte {
	return concat(mosaicPrefix, scope(symbol))
}

func mosaicKey(symbol string, id uint64) []byte {
	return concat(mosaicScope(symbol), be64(id))
}

func gemScope(symbol string) []byte {
	return concat(gemPrefix, scope(symbol))
}

func gemKey(symbol string, id uint64) []byte {
	return concat(gemScope(symbol), be64(id))
}

func gemByMosaicScope(symbol string, mosaicID uint64) []byte {
	return concat(gemByMosaicPrefix, scope(symbol), be64(mosaicID))
}

func gemByMosaicKey(symbol string, mosaicID, gemID uint64) []byte {
	return concat(gemByMosaicScope(symbol, mosaicID), be64(gemID))
}

func gemSeqKey(symbol string) []byte {
	return concat(gemSeqPrefix, scope(symbol))
}

func inclusionKey(symbol, account string) []byte {
	return concat(inclusionPrefix, scope(symbol), hashed(account))
}

func provisionScope(symbol string) []byte {
	return concat(provisionPrefix, scope(symbol))
}

func provisionKey(symbol, grantor, recipient string) []byte {
	return concat(provisionScope(symbol), hashed(grantor, recipient))
}

func adviceScope(symbol string) []byte {
	return concat(advicePrefix, scope(symbol))
}

func adviceKey(symbol, leader string) []byte {
	return concat(adviceScope(symbol), hashed(leader))
}

func slapKey(symbol string, mosaicID uint64) []byte {
	return concat(slapPrefix, scope(symbol), be64(mosaicID))
}

func galleryStatKey(symbol string) []byte {
	return concat(galleryStatPrefix, scope(symbol))
}

func vertexKey(symbol string, id uint64) []byte {
	return concat(vertexPrefix, scope(symbol), be64(id))
}

func tailID(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
