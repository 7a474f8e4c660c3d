package config

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// DefaultDiscriminant is the 1600-bit class group discriminant used unless
// the config overrides it. It is prime in absolute value and ≡ 1 mod 8.
const DefaultDiscriminant = "-331138239312467330656101851605560595560940154" +
	"0529855686818455441530427577050848495655036762990142334785600108830835" +
	"3083506236980600018729315119158888545170400248173152829933177518867657" +
	"7442682624464528921878196916751887000673772843049292900249527926672574" +
	"4045631010617232712284628338619107175410411351688628990069766453443496" +
	"2391227639705115239359835498839137436278040307655519949916627736216445" +
	"6963270702032900021389528585676962225798472326584156858077100910743416" +
	"42589939921525639"

const (
	DefaultTerminationModulus    = 100
	DefaultPrimeCeiling          = 20
	DefaultSleepInterval         = 5 * time.Millisecond
	DefaultMaxDerivationAttempts = 256
	DefaultDerivationCacheSize   = 128
)

type SearchConfig struct {
	// Decimal encoding of the negative discriminant defining the class group.
	Discriminant string `yaml:"discriminant"`
	// A form is a witness when its leading coefficient is divisible by this.
	TerminationModulus uint64 `yaml:"terminationModulus"`
	// Small divisor candidates during derivation wrap modulo this value.
	PrimeCeiling uint64 `yaml:"primeCeiling"`
	// Pacing delay between squarings.
	SleepInterval         time.Duration `yaml:"sleepInterval"`
	MaxDerivationAttempts int           `yaml:"maxDerivationAttempts"`
	// Stops the search after this many squarings, 0 runs until cancelled.
	MaxIterations       uint64 `yaml:"maxIterations"`
	DerivationCacheSize int    `yaml:"derivationCacheSize"`
}

func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		Discriminant:          DefaultDiscriminant,
		TerminationModulus:    DefaultTerminationModulus,
		PrimeCeiling:          DefaultPrimeCeiling,
		SleepInterval:         DefaultSleepInterval,
		MaxDerivationAttempts: DefaultMaxDerivationAttempts,
		DerivationCacheSize:   DefaultDerivationCacheSize,
	}
}

// GetDiscriminant parses and checks the configured discriminant. A valid
// discriminant is negative and ≡ 1 mod 4.
func (c *SearchConfig) GetDiscriminant() (*big.Int, error) {
	d, ok := new(big.Int).SetString(c.Discriminant, 10)
	if !ok {
		return nil, errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "discriminant is not a decimal integer"),
			"get discriminant",
		)
	}

	if d.Sign() >= 0 {
		return nil, errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "discriminant must be negative"),
			"get discriminant",
		)
	}

	if new(big.Int).Mod(d, big.NewInt(4)).Int64() != 1 {
		return nil, errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "discriminant must be 1 mod 4"),
			"get discriminant",
		)
	}

	return d, nil
}

func (c *SearchConfig) GetTerminationModulus() *big.Int {
	return new(big.Int).SetUint64(c.TerminationModulus)
}

func (c *SearchConfig) Validate() error {
	if _, err := c.GetDiscriminant(); err != nil {
		return errors.Wrap(err, "validate search config")
	}

	if c.TerminationModulus == 0 {
		return errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "termination modulus must be positive"),
			"validate search config",
		)
	}

	if c.PrimeCeiling < 3 {
		return errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "prime ceiling must be at least 3"),
			"validate search config",
		)
	}

	if c.SleepInterval < 0 {
		return errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "sleep interval must not be negative"),
			"validate search config",
		)
	}

	if c.MaxDerivationAttempts <= 0 {
		return errors.Wrap(
			errors.Wrap(ErrInvalidConfig, "max derivation attempts must be positive"),
			"validate search config",
		)
	}

	return nil
}
