package pki

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFileSigner(t *testing.T) {
	root, err := GenerateRootCA("File Signer CA")
	require.NoError(t, err)

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "ca-key.pem")
	certPath := filepath.Join(dir, "ca-cert.pem")
	require.NoError(t, os.WriteFile(keyPath, []byte(root.PrivateKey), 0600))
	require.NoError(t, os.WriteFile(certPath, []byte(root.Certificate), 0600))

	t.Run("signs leaves through IssueWithSigner", func(t *testing.T) {
		signer, err := NewFileSigner(keyPath, certPath)
		require.NoError(t, err)

		caCert, err := signer.GetCACertificate()
		require.NoError(t, err)

		leaf, err := NewIssuer().IssueWithSigner("files.example", signer)
		require.NoError(t, err)

		cert, err := DecodeCertificate([]byte(leaf.Certificate))
		require.NoError(t, err)
		require.NoError(t, cert.CheckSignatureFrom(caCert))
		require.Equal(t, caCert.RawSubject, cert.RawIssuer)
	})

	t.Run("missing key file", func(t *testing.T) {
		_, err := NewFileSigner(filepath.Join(dir, "missing.pem"), certPath)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("garbage certificate", func(t *testing.T) {
		bad := filepath.Join(dir, "bad-cert.pem")
		require.NoError(t, os.WriteFile(bad, []byte("not pem"), 0600))

		_, err := NewFileSigner(keyPath, bad)
		require.ErrorIs(t, err, ErrParse)
	})
}
