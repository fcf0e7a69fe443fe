package pki

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Simplified test - create certs with extension manually
func createCertWithExtension(oid asn1.ObjectIdentifier, value []byte) *x509.Certificate {
	ext := pkix.Extension{
		Id:    oid,
		Value: value,
	}

	return &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName: "test-host",
		},
		NotBefore:  time.Now(),
		NotAfter:   time.Now().Add(24 * time.Hour),
		Extensions: []pkix.Extension{ext},
	}
}

func TestExtractNetscapeCertType(t *testing.T) {
	t.Run("client and server", func(t *testing.T) {
		value, _ := asn1.Marshal(asn1.BitString{Bytes: []byte{0xc0}, BitLength: 2})
		cert := createCertWithExtension(OIDNetscapeCertType, value)

		got, err := ExtractNetscapeCertType(cert)
		require.NoError(t, err)
		require.Equal(t, NetscapeClient|NetscapeServer, got)
		require.True(t, got.Has(NetscapeServer))
		require.False(t, got.Has(NetscapeSSLCA))
	})

	t.Run("CA bits", func(t *testing.T) {
		value, _ := asn1.Marshal(asn1.BitString{Bytes: []byte{0x07}, BitLength: 8})
		cert := createCertWithExtension(OIDNetscapeCertType, value)

		got, err := ExtractNetscapeCertType(cert)
		require.NoError(t, err)
		require.Equal(t, NetscapeSSLCA|NetscapeEmailCA|NetscapeObjCA, got)
		require.Equal(t, "sslCA,emailCA,objCA", got.String())
	})

	t.Run("malformed value", func(t *testing.T) {
		cert := createCertWithExtension(OIDNetscapeCertType, []byte{0xff})

		_, err := ExtractNetscapeCertType(cert)
		require.Error(t, err)
	})

	t.Run("missing extension returns error", func(t *testing.T) {
		cert := &x509.Certificate{
			Subject: pkix.Name{CommonName: "test"},
		}

		_, err := ExtractNetscapeCertType(cert)
		require.Error(t, err)
		require.Equal(t, ErrExtensionNotFound, err)
	})

	t.Run("empty extensions returns error", func(t *testing.T) {
		cert := &x509.Certificate{
			Extensions: []pkix.Extension{},
		}

		_, err := ExtractNetscapeCertType(cert)
		require.Equal(t, ErrExtensionNotFound, err)
	})
}

func TestExtensionName(t *testing.T) {
	require.Equal(t, "basicConstraints", ExtensionName(OIDBasicConstraints))
	require.Equal(t, "nsCertType", ExtensionName(OIDNetscapeCertType))
	require.Equal(t, "subjectKeyIdentifier", ExtensionName(OIDSubjectKeyID))
	require.Equal(t, "1.2.3.4", ExtensionName(asn1.ObjectIdentifier{1, 2, 3, 4}))
}

func TestExtensionIDs(t *testing.T) {
	cert := &x509.Certificate{
		Extensions: []pkix.Extension{
			{Id: OIDBasicConstraints},
			{Id: OIDSubjectAltName},
			{Id: OIDKeyUsage},
		},
	}

	require.Equal(t, []asn1.ObjectIdentifier{OIDBasicConstraints, OIDSubjectAltName, OIDKeyUsage}, ExtensionIDs(cert))
	require.Empty(t, ExtensionIDs(&x509.Certificate{}))
}
