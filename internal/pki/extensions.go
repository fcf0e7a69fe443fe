package pki

import (
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 - RFC 5280 key identifier method 1
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"net"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// GeneralName tags used in the subjectAltName extension.
const (
	SANTypeDNS = 2
	SANTypeIP  = 7
)

// NetscapeCertType is the bit set carried by the nsCertType extension.
type NetscapeCertType uint8

const (
	NetscapeClient NetscapeCertType = 1 << iota
	NetscapeServer
	NetscapeEmail
	NetscapeObjSign
	netscapeReserved
	NetscapeSSLCA
	NetscapeEmailCA
	NetscapeObjCA
)

type basicConstraints struct {
	IsCA bool `asn1:"optional"`
}

// SANType reports the GeneralName tag chosen for a domain: SANTypeIP for IPv4 and
// IPv6 literals, SANTypeDNS for everything else.
func SANType(domain string) int {
	if net.ParseIP(domain) != nil {
		return SANTypeIP
	}
	return SANTypeDNS
}

// SubjectAltName builds a subjectAltName extension holding exactly one entry for
// domain. Internationalised hostnames are stored in their punycode form.
func SubjectAltName(domain string) (pkix.Extension, error) {
	var name asn1.RawValue
	if ip := net.ParseIP(domain); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			ip = v4
		}
		name = asn1.RawValue{Tag: SANTypeIP, Class: asn1.ClassContextSpecific, Bytes: ip}
	} else {
		host, err := DNSName(domain)
		if err != nil {
			return pkix.Extension{}, err
		}
		name = asn1.RawValue{Tag: SANTypeDNS, Class: asn1.ClassContextSpecific, Bytes: []byte(host)}
	}

	value, err := asn1.Marshal([]asn1.RawValue{name})
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal subjectAltName: %w", err)
	}
	return pkix.Extension{Id: OIDSubjectAltName, Value: value}, nil
}

// DNSName returns the IA5 form of a hostname. ASCII names, including wildcards and
// the empty name, are returned unchanged; anything else goes through IDNA lookup.
func DNSName(domain string) (string, error) {
	if isASCII(domain) {
		return domain, nil
	}

	host, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("invalid hostname %q: %w", domain, err)
	}
	return host, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func basicConstraintsExtension(isCA bool) (pkix.Extension, error) {
	value, err := asn1.Marshal(basicConstraints{IsCA: isCA})
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal basicConstraints: %w", err)
	}
	return pkix.Extension{Id: OIDBasicConstraints, Value: value}, nil
}

func keyUsageExtension(usage x509.KeyUsage) (pkix.Extension, error) {
	var a [2]byte
	for i := 0; i < 9; i++ {
		if usage&(1<<i) != 0 {
			a[i/8] |= 0x80 >> (i % 8)
		}
	}
	l := 1
	if a[1] != 0 {
		l = 2
	}
	value, err := asn1.Marshal(bitString(a[:l]))
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal keyUsage: %w", err)
	}
	return pkix.Extension{Id: OIDKeyUsage, Value: value}, nil
}

func extKeyUsageExtension(oids ...asn1.ObjectIdentifier) (pkix.Extension, error) {
	value, err := asn1.Marshal(oids)
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal extKeyUsage: %w", err)
	}
	return pkix.Extension{Id: OIDExtKeyUsage, Value: value}, nil
}

func netscapeCertTypeExtension(t NetscapeCertType) (pkix.Extension, error) {
	// bit 0 (client) is the most significant bit of the first octet
	var b byte
	for i := 0; i < 8; i++ {
		if t&(1<<i) != 0 {
			b |= 0x80 >> i
		}
	}
	value, err := asn1.Marshal(bitString([]byte{b}))
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal nsCertType: %w", err)
	}
	return pkix.Extension{Id: OIDNetscapeCertType, Value: value}, nil
}

func subjectKeyIDExtension(pub *rsa.PublicKey) (pkix.Extension, error) {
	value, err := asn1.Marshal(SubjectKeyID(pub))
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal subjectKeyIdentifier: %w", err)
	}
	return pkix.Extension{Id: OIDSubjectKeyID, Value: value}, nil
}

// SubjectKeyID is the SHA-1 hash of the DER encoded RSAPublicKey, which is the
// content of the subjectPublicKey BIT STRING.
func SubjectKeyID(pub *rsa.PublicKey) []byte {
	sum := sha1.Sum(x509.MarshalPKCS1PublicKey(pub)) // #nosec G401
	return sum[:]
}

// bitString trims trailing zero bits so the encoding carries the minimal length.
func bitString(b []byte) asn1.BitString {
	bitLen := len(b) * 8
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			for bit := 0; bit < 8; bit++ {
				if b[i]&(1<<bit) != 0 {
					break
				}
				bitLen--
			}
			break
		}
		bitLen -= 8
	}
	if bitLen == 0 {
		return asn1.BitString{}
	}
	return asn1.BitString{Bytes: b, BitLength: bitLen}
}

type extensionBuilder func() (pkix.Extension, error)

func buildExtensions(builders ...extensionBuilder) ([]pkix.Extension, error) {
	exts := make([]pkix.Extension, 0, len(builders))
	for _, build := range builders {
		ext, err := build()
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}
