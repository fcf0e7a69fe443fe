package pki

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
)

var (
	_ CASigner = (*PEMSigner)(nil)
	_ CASigner = (*selfSigner)(nil)
)

// GetCertificateFunc returns a tls.Config GetCertificate callback that issues a
// leaf for the name the client asked for, signed by signer. Without SNI the local
// IP address of the connection is used. Nothing is cached; every handshake mints a
// new key pair.
func (i *Issuer) GetCertificateFunc(signer CASigner) func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		domain, err := helloDomain(hello)
		if err != nil {
			return nil, err
		}

		res, err := i.IssueWithSigner(domain, signer)
		if err != nil {
			return nil, fmt.Errorf("failed to issue certificate for %s: %w", domain, err)
		}
		return res.TLSCertificate()
	}
}

func helloDomain(hello *tls.ClientHelloInfo) (string, error) {
	if hello.ServerName != "" {
		return hello.ServerName, nil
	}
	if hello.Conn != nil {
		if addr, ok := hello.Conn.LocalAddr().(*net.TCPAddr); ok {
			return addr.IP.String(), nil
		}
	}
	return "", errors.New("client hello carries no server name")
}
