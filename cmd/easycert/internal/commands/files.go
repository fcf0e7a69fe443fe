package commands

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wolfeidau/easycert/internal/pki"
)

var errInvalidName = errors.New("name must not contain path separators")

// outputPaths holds the PEM files written for a single result
type outputPaths struct {
	cert string
	key  string
	pub  string
}

// newOutputPaths names the files for a result inside dir. The name becomes part of
// a file name, so it may not walk out of dir.
func newOutputPaths(dir, name string) (outputPaths, error) {
	if strings.ContainsAny(name, `/\`) || name == ".." {
		return outputPaths{}, fmt.Errorf("%w: %q", errInvalidName, name)
	}

	return outputPaths{
		cert: filepath.Join(dir, name+"-cert.pem"),
		key:  filepath.Join(dir, name+"-key.pem"),
		pub:  filepath.Join(dir, name+"-pub.pem"),
	}, nil
}

// CertValidation holds certificate validation results
type CertValidation struct {
	Path          string
	Exists        bool
	Expired       bool
	NotBefore     time.Time
	NotAfter      time.Time
	DaysRemaining int
	ShouldRotate  bool
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return pki.DecodeCertificate(data)
}

// validateCertificate reports whether the certificate at path is missing, expired
// or due for rotation as of now.
func validateCertificate(path string, now time.Time, rotationThreshold time.Duration) (*CertValidation, error) {
	if !fileExists(path) {
		return &CertValidation{Path: path, ShouldRotate: true}, nil
	}

	cert, err := loadCertificate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	remaining := cert.NotAfter.Sub(now)
	expired := remaining <= 0

	return &CertValidation{
		Path:          path,
		Exists:        true,
		Expired:       expired,
		NotBefore:     cert.NotBefore,
		NotAfter:      cert.NotAfter,
		DaysRemaining: int(remaining.Hours() / 24),
		ShouldRotate:  expired || remaining < rotationThreshold,
	}, nil
}

// writeResult writes the certificate, private key and public key PEMs. The
// private key is the only file kept owner-readable.
func writeResult(paths outputPaths, result *pki.Result) error {
	if err := os.MkdirAll(filepath.Dir(paths.cert), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		path string
		data string
		perm os.FileMode
	}{
		{paths.cert, result.Certificate, 0644},
		{paths.key, result.PrivateKey, 0600},
		{paths.pub, result.PublicKey, 0644},
	}

	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.data), f.perm); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}

	return nil
}
