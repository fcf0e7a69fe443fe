package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/easycert/internal/caconfig"
	"github.com/wolfeidau/easycert/internal/logger"
	"github.com/wolfeidau/easycert/internal/pki"
)

// RootCACmd generates a self-signed root CA and optionally publishes it to SSM
type RootCACmd struct {
	CommonName             string        `help:"common name of the root CA" default:"CertManager"`
	OutDir                 string        `help:"output directory for the CA files" default:"./certs" type:"path"`
	SubjectFile            string        `help:"YAML or JSON file replacing the default subject attributes" type:"path"`
	ExtendedRootExtensions bool          `help:"add keyUsage, extKeyUsage, nsCertType and subjectKeyIdentifier to the root CA"`
	Force                  bool          `help:"force regeneration of the CA" default:"false"`
	RotationThreshold      time.Duration `help:"regenerate the CA when it expires within this window" default:"720h"`
	SSMPrefix              string        `help:"SSM parameter prefix to publish the CA to, e.g. /easycert/dev" env:"EASYCERT_SSM_PREFIX"`
	AWSRegion              string        `help:"AWS region" env:"AWS_REGION"`
	AWSEndpoint            string        `help:"AWS endpoint (for LocalStack)" env:"AWS_ENDPOINT"`
}

// Run executes the root-ca command
func (cmd *RootCACmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogger()

	paths, err := newOutputPaths(cmd.OutDir, "ca")
	if err != nil {
		return err
	}

	root, err := cmd.ensureRootCA(ctx, paths)
	if err != nil {
		return err
	}

	if cmd.SSMPrefix != "" {
		cfg := caconfig.Config{
			SSMPrefix:   cmd.SSMPrefix,
			AWSRegion:   cmd.AWSRegion,
			AWSEndpoint: cmd.AWSEndpoint,
		}
		if err := caconfig.Save(ctx, cfg, root); err != nil {
			return fmt.Errorf("failed to publish CA to SSM: %w", err)
		}
	}

	fmt.Println("Root CA:")
	fmt.Printf("  Certificate: %s\n", paths.cert)
	fmt.Printf("  Key:         %s\n", paths.key)
	fmt.Printf("  Public Key:  %s\n", paths.pub)
	if cmd.SSMPrefix != "" {
		fmt.Printf("  SSM Prefix:  %s\n", cmd.SSMPrefix)
	}

	return nil
}

// ensureRootCA reuses a valid CA on disk or generates a new one
func (cmd *RootCACmd) ensureRootCA(ctx context.Context, paths outputPaths) (*pki.Result, error) {
	validation, err := validateCertificate(paths.cert, time.Now(), cmd.RotationThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to validate CA certificate: %w", err)
	}

	switch {
	case cmd.Force:
		log.Info().Msg("Force flag set, regenerating CA certificate...")
	case validation.ShouldRotate && validation.Expired:
		log.Error().
			Int("days_expired", -validation.DaysRemaining).
			Msg("CA certificate is expired, regenerating...")
	case validation.ShouldRotate && validation.Exists:
		log.Warn().
			Int("days_remaining", validation.DaysRemaining).
			Msg("CA certificate approaching expiry, regenerating...")
	case validation.Exists && fileExists(paths.key) && fileExists(paths.pub):
		log.Info().
			Int("days_remaining", validation.DaysRemaining).
			Msg("CA certificate is valid, using existing...")
		return loadRootCA(ctx, paths)
	default:
		log.Info().Msg("Generating new CA certificate...")
	}

	issuer, err := newIssuer(cmd.SubjectFile, pki.WithExtendedRootExtensions(cmd.ExtendedRootExtensions))
	if err != nil {
		return nil, err
	}

	root, err := issuer.GenerateRootCA(cmd.CommonName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate root CA: %w", err)
	}

	cert, err := pki.DecodeCertificate([]byte(root.Certificate))
	if err != nil {
		return nil, fmt.Errorf("generated root CA is invalid: %w", err)
	}

	if err := caconfig.Save(ctx, caFiles(paths), root); err != nil {
		return nil, err
	}

	logger.Certificate(log.Info(), cert.Subject.CommonName, cert.SerialNumber.String(), cert.NotAfter).
		Str("path", paths.cert).
		Msg("Generated root CA")

	return root, nil
}

func loadRootCA(ctx context.Context, paths outputPaths) (*pki.Result, error) {
	ca, err := caconfig.Load(ctx, caFiles(paths))
	if err != nil {
		return nil, fmt.Errorf("failed to load existing CA: %w", err)
	}

	pub, err := os.ReadFile(paths.pub)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA public key: %w", err)
	}

	return &pki.Result{Certificate: ca.Cert, PrivateKey: ca.Key, PublicKey: string(pub)}, nil
}

func caFiles(paths outputPaths) caconfig.Config {
	return caconfig.Config{CertPath: paths.cert, KeyPath: paths.key, PubPath: paths.pub}
}
