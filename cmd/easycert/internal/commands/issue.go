package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/easycert/internal/caconfig"
	"github.com/wolfeidau/easycert/internal/logger"
	"github.com/wolfeidau/easycert/internal/pki"
)

// IssueCmd issues a leaf certificate signed by an existing CA
type IssueCmd struct {
	Domain      string `arg:"" help:"hostname or IP address to issue for"`
	CACert      string `help:"CA certificate PEM" default:"./certs/ca-cert.pem" type:"path"`
	CAKey       string `help:"CA private key PEM" default:"./certs/ca-key.pem" type:"path"`
	OutDir      string `help:"output directory for the issued files" default:"./certs" type:"path"`
	SubjectFile string `help:"YAML or JSON file replacing the default subject attributes" type:"path"`
	SSMPrefix   string `help:"SSM parameter prefix to load the CA from instead of files" env:"EASYCERT_SSM_PREFIX"`
	AWSRegion   string `help:"AWS region" env:"AWS_REGION"`
	AWSEndpoint string `help:"AWS endpoint (for LocalStack)" env:"AWS_ENDPOINT"`
}

// Run executes the issue command
func (cmd *IssueCmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogger()

	paths, err := cmd.issue(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Certificate for %s:\n", cmd.Domain)
	fmt.Printf("  Certificate: %s\n", paths.cert)
	fmt.Printf("  Key:         %s\n", paths.key)
	fmt.Printf("  Public Key:  %s\n", paths.pub)

	return nil
}

func (cmd *IssueCmd) issue(ctx context.Context) (outputPaths, error) {
	paths, err := newOutputPaths(cmd.OutDir, cmd.Domain)
	if err != nil {
		return outputPaths{}, err
	}

	ca, err := caconfig.Load(ctx, cmd.caConfig())
	if err != nil {
		return outputPaths{}, fmt.Errorf("failed to load CA: %w", err)
	}

	issuer, err := newIssuer(cmd.SubjectFile)
	if err != nil {
		return outputPaths{}, err
	}

	log.Debug().Str("domain", cmd.Domain).Int("san_type", pki.SANType(cmd.Domain)).Msg("Issuing certificate")

	result, err := issuer.GenerateCertsForHostname(cmd.Domain, ca)
	if err != nil {
		return outputPaths{}, fmt.Errorf("failed to issue certificate: %w", err)
	}

	// nothing is written unless the issued certificate parses back
	cert, err := pki.DecodeCertificate([]byte(result.Certificate))
	if err != nil {
		return outputPaths{}, fmt.Errorf("issued certificate is invalid: %w", err)
	}

	if err := writeResult(paths, result); err != nil {
		return outputPaths{}, err
	}

	logger.Certificate(log.Info(), cert.Subject.CommonName, cert.SerialNumber.String(), cert.NotAfter).
		Str("path", paths.cert).
		Msg("Issued certificate")

	return paths, nil
}

// caConfig prefers SSM when a prefix is set
func (cmd *IssueCmd) caConfig() caconfig.Config {
	if cmd.SSMPrefix != "" {
		return caconfig.Config{
			SSMPrefix:   cmd.SSMPrefix,
			AWSRegion:   cmd.AWSRegion,
			AWSEndpoint: cmd.AWSEndpoint,
		}
	}

	return caconfig.Config{CertPath: cmd.CACert, KeyPath: cmd.CAKey}
}
