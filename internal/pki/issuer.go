package pki

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"sync"
)

// DefaultCommonName is used for root CAs issued without a common name.
const DefaultCommonName = "CertManager"

// Issuer mints root CAs and leaf certificates. The default subject attributes are
// owned by the Issuer rather than the process, so independent issuers never share
// state.
type Issuer struct {
	mu                     sync.RWMutex
	attrs                  []Attribute
	extendedRootExtensions bool
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithDefaultAttrs replaces the built-in default subject attributes.
func WithDefaultAttrs(attrs []Attribute) Option {
	return func(i *Issuer) {
		i.attrs = append([]Attribute(nil), attrs...)
	}
}

// WithExtendedRootExtensions adds keyUsage, extKeyUsage, nsCertType and
// subjectKeyIdentifier to root CAs, after basicConstraints. Off by default.
func WithExtendedRootExtensions(enabled bool) Option {
	return func(i *Issuer) {
		i.extendedRootExtensions = enabled
	}
}

// NewIssuer creates an Issuer using DefaultAttrs unless overridden.
func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{attrs: DefaultAttrs()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetDefaultAttrs replaces the default subject attributes wholesale. Attributes
// are not validated here; an unknown name fails the next issuance with ErrSigning.
func (i *Issuer) SetDefaultAttrs(attrs []Attribute) {
	cp := append([]Attribute(nil), attrs...)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.attrs = cp
}

// DefaultAttrs returns a copy of the issuer's default subject attributes.
func (i *Issuer) DefaultAttrs() []Attribute {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]Attribute(nil), i.attrs...)
}

// GenerateRootCA creates a self-signed CA with a random serial number. The subject
// is the default attributes followed by commonName, and the issuer is identical.
func (i *Issuer) GenerateRootCA(commonName string) (*Result, error) {
	if commonName == "" {
		commonName = DefaultCommonName
	}

	key, template, err := newKeysAndCert(nil)
	if err != nil {
		return nil, err
	}

	subject, err := i.subject(commonName)
	if err != nil {
		return nil, err
	}
	template.Subject = subject

	template.ExtraExtensions, err = i.rootExtensions(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	der, err := (&selfSigner{key: key}).SignCertificate(template)
	if err != nil {
		return nil, err
	}

	return encodeResult(key, der)
}

// GenerateCertsForHostname creates a leaf certificate for domain, a hostname or IP
// literal, signed by the supplied CA. The serial number is derived from the domain,
// so reissuing for the same domain yields the same serial.
func (i *Issuer) GenerateCertsForHostname(domain string, ca CAConfig) (*Result, error) {
	signer, err := NewPEMSigner(ca)
	if err != nil {
		return nil, err
	}
	return i.IssueWithSigner(domain, signer)
}

// IssueWithSigner creates a leaf certificate for domain signed by signer.
func (i *Issuer) IssueWithSigner(domain string, signer CASigner) (*Result, error) {
	key, template, err := newKeysAndCert(DomainSerial(domain))
	if err != nil {
		return nil, err
	}

	subject, err := i.subject(domain)
	if err != nil {
		return nil, err
	}
	template.Subject = subject

	template.ExtraExtensions, err = leafExtensions(domain, &key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	der, err := signer.SignCertificate(template)
	if err != nil {
		if errors.Is(err, ErrSigning) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	return encodeResult(key, der)
}

func (i *Issuer) subject(commonName string) (pkix.Name, error) {
	name, err := buildName(withCommonName(i.DefaultAttrs(), commonName))
	if err != nil {
		return pkix.Name{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return name, nil
}

func (i *Issuer) rootExtensions(pub *rsa.PublicKey) ([]pkix.Extension, error) {
	builders := []extensionBuilder{
		func() (pkix.Extension, error) { return basicConstraintsExtension(true) },
	}

	i.mu.RLock()
	extended := i.extendedRootExtensions
	i.mu.RUnlock()

	if extended {
		builders = append(builders,
			func() (pkix.Extension, error) {
				return keyUsageExtension(x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature |
					x509.KeyUsageContentCommitment | x509.KeyUsageKeyEncipherment | x509.KeyUsageDataEncipherment)
			},
			func() (pkix.Extension, error) {
				return extKeyUsageExtension(OIDServerAuth, OIDClientAuth, OIDCodeSigning, OIDEmailProtection, OIDTimeStamping)
			},
			func() (pkix.Extension, error) {
				return netscapeCertTypeExtension(NetscapeClient | NetscapeServer | NetscapeEmail | NetscapeObjSign |
					NetscapeSSLCA | NetscapeEmailCA | NetscapeObjCA)
			},
			func() (pkix.Extension, error) { return subjectKeyIDExtension(pub) },
		)
	}

	return buildExtensions(builders...)
}

func leafExtensions(domain string, pub *rsa.PublicKey) ([]pkix.Extension, error) {
	return buildExtensions(
		func() (pkix.Extension, error) { return basicConstraintsExtension(false) },
		func() (pkix.Extension, error) { return SubjectAltName(domain) },
		func() (pkix.Extension, error) {
			return keyUsageExtension(x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageDataEncipherment)
		},
		func() (pkix.Extension, error) { return extKeyUsageExtension(OIDServerAuth, OIDClientAuth) },
		func() (pkix.Extension, error) { return netscapeCertTypeExtension(NetscapeClient | NetscapeServer) },
		func() (pkix.Extension, error) { return subjectKeyIDExtension(pub) },
	)
}

// selfSigner signs a template with its own key, making it both subject and issuer.
type selfSigner struct {
	key  *rsa.PrivateKey
	cert *x509.Certificate
}

func (s *selfSigner) SignCertificate(template *x509.Certificate) ([]byte, error) {
	der, err := x509.CreateCertificate(rand.Reader, template, template, &s.key.PublicKey, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create CA certificate: %w", ErrSigning, err)
	}

	s.cert, err = x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse generated CA: %w", ErrSigning, err)
	}
	return der, nil
}

func (s *selfSigner) GetCACertificate() (*x509.Certificate, error) {
	if s.cert == nil {
		return nil, errors.New("CA certificate has not been signed yet")
	}
	return s.cert, nil
}

// GenerateRootCA creates a self-signed CA using the built-in default attributes.
func GenerateRootCA(commonName string) (*Result, error) {
	return NewIssuer().GenerateRootCA(commonName)
}

// GenerateCertsForHostname creates a leaf for domain signed by ca using the
// built-in default attributes.
func GenerateCertsForHostname(domain string, ca CAConfig) (*Result, error) {
	return NewIssuer().GenerateCertsForHostname(domain, ca)
}
