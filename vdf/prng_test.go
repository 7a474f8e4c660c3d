package vdf_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

func TestPRNGBitLength(t *testing.T) {
	seed := big.NewInt(1234567890)
	for _, bitlen := range []int{1, 8, 511, 512, 513, 1024, 1600, 4096} {
		r := vdf.PRNG(seed, 0, bitlen)
		assert.Equal(t, bitlen, r.BitLen(), "bitlen %d", bitlen)
	}

	assert.Equal(t, 0, vdf.PRNG(seed, 0, 0).Sign())
}

func TestPRNGDeterminism(t *testing.T) {
	seed, _ := new(big.Int).SetString("98765432109876543210987654321", 10)

	a := vdf.PRNG(seed, 3, 1600)
	b := vdf.PRNG(seed, 3, 1600)
	assert.Equal(t, 0, a.Cmp(b))

	assert.NotEqual(t, 0, a.Cmp(vdf.PRNG(seed, 4, 1600)))
	assert.NotEqual(
		t,
		0,
		a.Cmp(vdf.PRNG(new(big.Int).Add(seed, big.NewInt(1)), 3, 1600)),
	)

	zero := vdf.PRNG(new(big.Int), 0, 1600)
	assert.Equal(t, 1600, zero.BitLen())
}
