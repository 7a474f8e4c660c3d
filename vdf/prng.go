package vdf

import (
	"crypto/hmac"
	"crypto/sha512"
	"math/big"
)

// PRNG expands (seed, i) into exactly bitlen pseudo-random bits. The first
// block is HMAC-SHA512(key = i, seed); while the accumulator is shorter than
// bitlen, the previous block is re-MACed under the same key and appended
// below the accumulator. The result keeps the most significant bitlen bits,
// so its top bit is always set. Integers are encoded as big-endian
// magnitudes, zero as the empty string.
func PRNG(seed *big.Int, i uint64, bitlen int) *big.Int {
	if bitlen <= 0 {
		return new(big.Int)
	}

	mac := hmac.New(sha512.New, new(big.Int).SetUint64(i).Bytes())
	mac.Write(seed.Bytes())
	block := mac.Sum(nil)

	res := new(big.Int).SetBytes(block)
	tmp := new(big.Int).Set(res)
	for res.BitLen() < bitlen {
		mac.Reset()
		mac.Write(tmp.Bytes())
		block = mac.Sum(block[:0])
		tmp.SetBytes(block)

		// an all-zero digest would never grow the accumulator
		shift := res.BitLen()
		if shift == 0 {
			res.Set(tmp)
			continue
		}

		res.Lsh(res, uint(shift))
		res.Add(res, tmp)
	}

	return res.Rsh(res, uint(res.BitLen()-bitlen))
}
