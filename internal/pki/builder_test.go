package pki

import (
	"crypto/md5"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewKeysAndCert(t *testing.T) {
	t.Run("populates key, serial and validity", func(t *testing.T) {
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		restore := now
		now = func() time.Time { return fixed }
		t.Cleanup(func() { now = restore })

		serial := DomainSerial("builder.example.com")
		key, template, err := newKeysAndCert(serial)
		require.NoError(t, err)

		require.Equal(t, KeyBits, key.N.BitLen())
		require.Equal(t, &key.PublicKey, template.PublicKey)
		require.Equal(t, serial, template.SerialNumber)
		require.Equal(t, fixed.Add(-24*time.Hour), template.NotBefore)
		require.Equal(t, fixed.Add(824*24*time.Hour), template.NotAfter)
		require.True(t, template.NotBefore.Before(template.NotAfter))
		require.Empty(t, template.ExtraExtensions)
	})

	t.Run("random serial when none given", func(t *testing.T) {
		_, template, err := newKeysAndCert(nil)
		require.NoError(t, err)
		require.NotNil(t, template.SerialNumber)
		require.Less(t, template.SerialNumber.Int64(), int64(randomSerialLimit))
	})

	t.Run("key generation failure", func(t *testing.T) {
		restore := generateKey
		generateKey = func(int) (*rsa.PrivateKey, error) { return nil, errors.New("entropy exhausted") }
		t.Cleanup(func() { generateKey = restore })

		_, _, err := newKeysAndCert(nil)
		require.ErrorIs(t, err, ErrKeyGeneration)

		_, err = GenerateRootCA("TestCA")
		require.ErrorIs(t, err, ErrKeyGeneration)
	})
}

func TestDomainSerial(t *testing.T) {
	for _, domain := range []string{"example.com", "192.168.1.1", ""} {
		t.Run(domain, func(t *testing.T) {
			sum := md5.Sum([]byte(domain))
			want := hex.EncodeToString(sum[:])

			got := DomainSerial(domain)
			require.Equal(t, 0, DomainSerial(domain).Cmp(got))

			// Text drops leading zeros that the hex digest keeps
			require.Equal(t, want, leftPad(got.Text(16), len(want)))
		})
	}
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}
