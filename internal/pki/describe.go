package pki

import (
	"crypto/x509"
	"time"
)

// Summary is a flattened view of a certificate for display.
type Summary struct {
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	SerialNumber string    `json:"serialNumber"`
	NotBefore    time.Time `json:"notBefore"`
	NotAfter     time.Time `json:"notAfter"`
	IsCA         bool      `json:"isCA"`
	DNSNames     []string  `json:"dnsNames,omitempty"`
	IPAddresses  []string  `json:"ipAddresses,omitempty"`
	Extensions   []string  `json:"extensions"`
	NSCertType   string    `json:"nsCertType,omitempty"`
	SelfSigned   bool      `json:"selfSigned"`
}

// Describe summarises a parsed certificate. Extensions are listed in encoded order.
func Describe(cert *x509.Certificate) Summary {
	s := Summary{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore.UTC(),
		NotAfter:     cert.NotAfter.UTC(),
		IsCA:         cert.IsCA,
		DNSNames:     cert.DNSNames,
		SelfSigned:   string(cert.RawSubject) == string(cert.RawIssuer),
	}

	for _, ip := range cert.IPAddresses {
		s.IPAddresses = append(s.IPAddresses, ip.String())
	}

	for _, id := range ExtensionIDs(cert) {
		s.Extensions = append(s.Extensions, ExtensionName(id))
	}

	if t, err := ExtractNetscapeCertType(cert); err == nil {
		s.NSCertType = t.String()
	}

	return s
}
