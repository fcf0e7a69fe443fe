package pki

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// PEM block types produced by the issuer.
const (
	PEMTypeCertificate   = "CERTIFICATE"
	PEMTypeRSAPrivateKey = "RSA PRIVATE KEY"
	PEMTypePublicKey     = "PUBLIC KEY"
)

// CAConfig is a root CA as persisted by the caller: PEM certificate and PEM private key.
type CAConfig struct {
	Cert string `json:"cert" yaml:"cert"`
	Key  string `json:"key" yaml:"key"`
}

// Result holds the PEM-encoded output of an issuance call.
type Result struct {
	PrivateKey  string `json:"privateKey"`
	PublicKey   string `json:"publicKey"`
	Certificate string `json:"certificate"`
}

// CAConfig returns the result as CA input for leaf issuance.
func (r *Result) CAConfig() CAConfig {
	return CAConfig{Cert: r.Certificate, Key: r.PrivateKey}
}

// TLSCertificate pairs the certificate and private key for use in a tls.Config.
func (r *Result) TLSCertificate() (*tls.Certificate, error) {
	cert, err := tls.X509KeyPair([]byte(r.Certificate), []byte(r.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}
	return &cert, nil
}

func encodeResult(key *rsa.PrivateKey, der []byte) (*Result, error) {
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return &Result{
		PrivateKey:  string(pem.EncodeToMemory(&pem.Block{Type: PEMTypeRSAPrivateKey, Bytes: x509.MarshalPKCS1PrivateKey(key)})),
		PublicKey:   string(pem.EncodeToMemory(&pem.Block{Type: PEMTypePublicKey, Bytes: pubBytes})),
		Certificate: string(pem.EncodeToMemory(&pem.Block{Type: PEMTypeCertificate, Bytes: der})),
	}, nil
}

// DecodeCertificate parses the first CERTIFICATE block in data.
func DecodeCertificate(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: failed to decode PEM block", ErrParse)
	}
	if block.Type != PEMTypeCertificate {
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrParse, block.Type)
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse certificate: %w", ErrParse, err)
	}
	return cert, nil
}
