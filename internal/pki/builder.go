package pki

import (
	"crypto/md5" // #nosec G501 - deterministic serial derivation only
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"
	"time"
)

const (
	// KeyBits is the RSA modulus size for every generated key pair.
	KeyBits = 2048
	// BackdateDuration is subtracted from the issuance time for NotBefore.
	BackdateDuration = 24 * time.Hour
	// ValidityDuration is added to the issuance time for NotAfter. 824 days keeps
	// leaf certificates under the 825 day limit Apple platforms enforce.
	ValidityDuration = 824 * 24 * time.Hour
	// randomSerialLimit bounds serial numbers drawn when the caller supplies none.
	randomSerialLimit = 100000
)

// internal variables for mocking in tests
var (
	generateKey = func(bits int) (*rsa.PrivateKey, error) {
		return rsa.GenerateKey(rand.Reader, bits)
	}
	now = time.Now
)

// newKeysAndCert allocates a fresh key pair and a certificate draft carrying the
// public key, serial number and validity window. A nil serial draws one at random.
func newKeysAndCert(serial *big.Int) (*rsa.PrivateKey, *x509.Certificate, error) {
	key, err := generateKey(KeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}

	if serial == nil {
		serial, err = randomSerial()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to generate serial number: %w", ErrKeyGeneration, err)
		}
	}

	issuedAt := now()
	template := &x509.Certificate{
		SerialNumber:       serial,
		PublicKey:          &key.PublicKey,
		NotBefore:          issuedAt.Add(-BackdateDuration),
		NotAfter:           issuedAt.Add(ValidityDuration),
		SignatureAlgorithm: x509.SHA256WithRSA,
	}

	return key, template, nil
}

func randomSerial() (*big.Int, error) {
	return rand.Int(rand.Reader, big.NewInt(randomSerialLimit))
}

// DomainSerial derives the deterministic serial number used for a domain's leaf
// certificate: the integer value of hex(MD5(domain)).
func DomainSerial(domain string) *big.Int {
	sum := md5.Sum([]byte(domain)) // #nosec G401
	return new(big.Int).SetBytes(sum[:])
}
