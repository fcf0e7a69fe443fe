package pki

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// PEMSigner implements CASigner using a CA private key and certificate decoded from
// PEM.
type PEMSigner struct {
	caKey  *rsa.PrivateKey
	caCert *x509.Certificate
}

// NewPEMSigner creates a PEMSigner from a CAConfig. Malformed PEM is reported as
// ErrParse.
func NewPEMSigner(ca CAConfig) (*PEMSigner, error) {
	caCert, caKey, err := ParseCA(ca)
	if err != nil {
		return nil, err
	}

	return &PEMSigner{
		caKey:  caKey,
		caCert: caCert,
	}, nil
}

// NewFileSigner creates a PEMSigner from PEM-encoded key and certificate files.
func NewFileSigner(caKeyPath, caCertPath string) (*PEMSigner, error) {
	keyData, err := os.ReadFile(caKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA key file: %w", err)
	}

	certData, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert file: %w", err)
	}

	return NewPEMSigner(CAConfig{Cert: string(certData), Key: string(keyData)})
}

// SignCertificate signs a certificate template with the CA private key using
// SHA-256. The issuer name is the CA certificate's raw subject.
func (s *PEMSigner) SignCertificate(template *x509.Certificate) ([]byte, error) {
	if err := verifyCertKeyPair(s.caCert, s.caKey); err != nil {
		return nil, fmt.Errorf("%w: CA key and certificate do not match: %w", ErrSigning, err)
	}

	// without a parent SubjectKeyId no authorityKeyIdentifier is injected, so the
	// template's extension list is encoded exactly as given
	parent := *s.caCert
	parent.SubjectKeyId = nil

	der, err := x509.CreateCertificate(rand.Reader, template, &parent, template.PublicKey, s.caKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return der, nil
}

// GetCACertificate returns the CA certificate.
func (s *PEMSigner) GetCACertificate() (*x509.Certificate, error) {
	return s.caCert, nil
}

// ParseCA decodes the CA certificate and RSA private key. Keys may be PKCS#1 or
// PKCS#8 wrapped.
func ParseCA(ca CAConfig) (*x509.Certificate, *rsa.PrivateKey, error) {
	certBlock, _ := pem.Decode([]byte(ca.Cert))
	if certBlock == nil {
		return nil, nil, fmt.Errorf("%w: failed to decode CA cert PEM", ErrParse)
	}

	caCert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse CA certificate: %w", ErrParse, err)
	}

	keyBlock, _ := pem.Decode([]byte(ca.Key))
	if keyBlock == nil {
		return nil, nil, fmt.Errorf("%w: failed to decode CA key PEM", ErrParse)
	}

	caKey, err := x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	if err != nil {
		// Fallback for PKCS8 wrapping
		k, pkcs8Err := x509.ParsePKCS8PrivateKey(keyBlock.Bytes)
		if pkcs8Err != nil {
			return nil, nil, fmt.Errorf("%w: failed to parse CA private key: %w", ErrParse, err)
		}
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, nil, fmt.Errorf("%w: CA private key is not RSA (got %T)", ErrParse, k)
		}
		caKey = rsaKey
	}

	return caCert, caKey, nil
}

// verifyCertKeyPair checks that a certificate's public key matches a private key
func verifyCertKeyPair(cert *x509.Certificate, key *rsa.PrivateKey) error {
	certPubKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("certificate public key is not RSA")
	}

	if !key.PublicKey.Equal(certPubKey) {
		return fmt.Errorf("public keys do not match")
	}

	return nil
}
