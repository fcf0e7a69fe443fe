package pki

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	root, err := GenerateRootCA("Describe CA")
	require.NoError(t, err)
	leaf, err := GenerateCertsForHostname("10.0.0.7", root.CAConfig())
	require.NoError(t, err)

	t.Run("root", func(t *testing.T) {
		s := Describe(decodeCert(t, root.Certificate))
		require.True(t, s.IsCA)
		require.True(t, s.SelfSigned)
		require.Equal(t, s.Subject, s.Issuer)
		require.Equal(t, []string{"basicConstraints"}, s.Extensions)
		require.Empty(t, s.NSCertType)
	})

	t.Run("leaf", func(t *testing.T) {
		s := Describe(decodeCert(t, leaf.Certificate))
		require.False(t, s.IsCA)
		require.False(t, s.SelfSigned)
		require.Equal(t, []string{"10.0.0.7"}, s.IPAddresses)
		require.Empty(t, s.DNSNames)
		require.Equal(t, DomainSerial("10.0.0.7").String(), s.SerialNumber)
		require.Regexp(t, `^[0-9]+$`, s.SerialNumber)
		require.Equal(t, "client,server", s.NSCertType)
		require.Equal(t, []string{
			"basicConstraints",
			"subjectAltName",
			"keyUsage",
			"extKeyUsage",
			"nsCertType",
			"subjectKeyIdentifier",
		}, s.Extensions)
	})
}

func TestDecodeCertificate(t *testing.T) {
	_, err := DecodeCertificate([]byte("garbage"))
	require.ErrorIs(t, err, ErrParse)
	require.EqualError(t, err, "malformed PEM input: failed to decode PEM block")

	root, err := GenerateRootCA("")
	require.NoError(t, err)

	_, err = DecodeCertificate([]byte(root.PrivateKey))
	require.ErrorIs(t, err, ErrParse)
}
