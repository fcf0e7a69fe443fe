package pki

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
)

// Extension OIDs written by the issuer.
var (
	OIDSubjectKeyID     = asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDKeyUsage         = asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDSubjectAltName   = asn1.ObjectIdentifier{2, 5, 29, 17}
	OIDBasicConstraints = asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDAuthorityKeyID   = asn1.ObjectIdentifier{2, 5, 29, 35}
	OIDExtKeyUsage      = asn1.ObjectIdentifier{2, 5, 29, 37}

	// OIDNetscapeCertType is the legacy Netscape certificate type extension.
	// Value: BIT STRING
	OIDNetscapeCertType = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}
)

// Extended key usage purposes.
var (
	OIDServerAuth      = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 1}
	OIDClientAuth      = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}
	OIDCodeSigning     = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 3}
	OIDEmailProtection = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 4}
	OIDTimeStamping    = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 8}
)

var extensionNames = map[string]string{
	OIDSubjectKeyID.String():     "subjectKeyIdentifier",
	OIDKeyUsage.String():         "keyUsage",
	OIDSubjectAltName.String():   "subjectAltName",
	OIDBasicConstraints.String(): "basicConstraints",
	OIDAuthorityKeyID.String():   "authorityKeyIdentifier",
	OIDExtKeyUsage.String():      "extKeyUsage",
	OIDNetscapeCertType.String(): "nsCertType",
}

// ExtensionName returns the conventional name for an extension OID, or the dotted
// OID when it is not one we know.
func ExtensionName(oid asn1.ObjectIdentifier) string {
	if name, ok := extensionNames[oid.String()]; ok {
		return name
	}
	return oid.String()
}

// ExtensionIDs returns the extension OIDs of a parsed certificate in encoded order.
func ExtensionIDs(cert *x509.Certificate) []asn1.ObjectIdentifier {
	ids := make([]asn1.ObjectIdentifier, 0, len(cert.Extensions))
	for _, ext := range cert.Extensions {
		ids = append(ids, ext.Id)
	}
	return ids
}

// ExtractNetscapeCertType extracts the nsCertType bit set from a certificate
func ExtractNetscapeCertType(cert *x509.Certificate) (NetscapeCertType, error) {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(OIDNetscapeCertType) {
			var bits asn1.BitString
			if _, err := asn1.Unmarshal(ext.Value, &bits); err != nil {
				return 0, fmt.Errorf("failed to unmarshal nsCertType: %w", err)
			}
			var t NetscapeCertType
			for i := 0; i < 8; i++ {
				if bits.At(i) == 1 {
					t |= 1 << i
				}
			}
			return t, nil
		}
	}
	return 0, ErrExtensionNotFound
}

// Has reports whether every bit in flag is set.
func (t NetscapeCertType) Has(flag NetscapeCertType) bool {
	return t&flag == flag
}

// String lists the set bits by name.
func (t NetscapeCertType) String() string {
	names := []string{"client", "server", "email", "objsign", "reserved", "sslCA", "emailCA", "objCA"}
	out := ""
	for i, name := range names {
		if t&(1<<i) == 0 {
			continue
		}
		if out != "" {
			out += ","
		}
		out += name
	}
	return out
}
