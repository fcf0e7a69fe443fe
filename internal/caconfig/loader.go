package caconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/easycert/internal/pki"
)

// SSM parameter names under the configured prefix
const (
	certParameter = "ca-cert"
	keyParameter  = "ca-key"
	pubParameter  = "ca-pub"

	maxTries = 5
)

// ErrNoSource is returned when neither file paths nor an SSM prefix are configured.
var ErrNoSource = errors.New("no CA source configured")

// ParameterAPI is the subset of the SSM client used here.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// Config for loading and saving CA material
type Config struct {
	// File paths (for local development). PubPath is optional and only written.
	CertPath string
	KeyPath  string
	PubPath  string

	// SSM parameter prefix, e.g. /easycert/dev (for shared environments)
	SSMPrefix   string
	AWSRegion   string
	AWSEndpoint string

	// Client overrides the SSM client built from the AWS default config.
	Client ParameterAPI
}

// internal variables for mocking in tests
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

// UseSSM reports whether SSM is the configured source.
func (c Config) UseSSM() bool {
	return c.SSMPrefix != ""
}

// Parameter returns the full SSM parameter name for a CA artifact.
func (c Config) Parameter(name string) string {
	return path.Join(c.SSMPrefix, name)
}

// Load loads the CA certificate and key from either SSM or files and checks that
// both decode.
func Load(ctx context.Context, cfg Config) (pki.CAConfig, error) {
	var (
		ca  pki.CAConfig
		err error
	)

	switch {
	case cfg.UseSSM():
		ca, err = loadFromSSM(ctx, cfg)
	case cfg.CertPath != "" && cfg.KeyPath != "":
		ca, err = loadFromFiles(cfg)
	default:
		return pki.CAConfig{}, ErrNoSource
	}
	if err != nil {
		return pki.CAConfig{}, err
	}

	if _, _, err := pki.ParseCA(ca); err != nil {
		return pki.CAConfig{}, fmt.Errorf("invalid CA material: %w", err)
	}

	return ca, nil
}

// Save writes a freshly generated root CA to SSM (key as SecureString) or to files.
func Save(ctx context.Context, cfg Config, root *pki.Result) error {
	switch {
	case cfg.UseSSM():
		return saveToSSM(ctx, cfg, root)
	case cfg.CertPath != "" && cfg.KeyPath != "":
		return saveToFiles(cfg, root)
	default:
		return ErrNoSource
	}
}

func (c Config) client(ctx context.Context) (ParameterAPI, error) {
	if c.Client != nil {
		return c.Client, nil
	}

	opts := []func(*config.LoadOptions) error{}
	if c.AWSRegion != "" {
		opts = append(opts, config.WithRegion(c.AWSRegion))
	}
	if c.AWSEndpoint != "" {
		// Use BaseEndpoint for LocalStack support
		opts = append(opts, config.WithBaseEndpoint(c.AWSEndpoint))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return ssm.NewFromConfig(awsConfig), nil
}

// loadFromSSM loads the CA from AWS SSM Parameter Store
func loadFromSSM(ctx context.Context, cfg Config) (pki.CAConfig, error) {
	client, err := cfg.client(ctx)
	if err != nil {
		return pki.CAConfig{}, err
	}

	caCert, err := getParameter(ctx, client, cfg.Parameter(certParameter))
	if err != nil {
		return pki.CAConfig{}, fmt.Errorf("failed to load CA cert from SSM: %w", err)
	}

	caKey, err := getParameter(ctx, client, cfg.Parameter(keyParameter))
	if err != nil {
		return pki.CAConfig{}, fmt.Errorf("failed to load CA key from SSM: %w", err)
	}

	return pki.CAConfig{Cert: caCert, Key: caKey}, nil
}

// loadFromFiles loads the CA from file paths
func loadFromFiles(cfg Config) (pki.CAConfig, error) {
	caCert, err := os.ReadFile(cfg.CertPath)
	if err != nil {
		return pki.CAConfig{}, fmt.Errorf("failed to read CA cert: %w", err)
	}

	caKey, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return pki.CAConfig{}, fmt.Errorf("failed to read CA key: %w", err)
	}

	return pki.CAConfig{Cert: string(caCert), Key: string(caKey)}, nil
}

func saveToSSM(ctx context.Context, cfg Config, root *pki.Result) error {
	client, err := cfg.client(ctx)
	if err != nil {
		return err
	}

	params := []struct {
		name      string
		value     string
		paramType ssmtypes.ParameterType
	}{
		{cfg.Parameter(certParameter), root.Certificate, ssmtypes.ParameterTypeString},
		{cfg.Parameter(pubParameter), root.PublicKey, ssmtypes.ParameterTypeString},
		{cfg.Parameter(keyParameter), root.PrivateKey, ssmtypes.ParameterTypeSecureString},
	}

	for _, p := range params {
		if err := putParameter(ctx, client, p.name, p.value, p.paramType); err != nil {
			return fmt.Errorf("failed to upload %s: %w", p.name, err)
		}
	}

	return nil
}

func saveToFiles(cfg Config, root *pki.Result) error {
	for _, dir := range []string{filepath.Dir(cfg.CertPath), filepath.Dir(cfg.KeyPath), filepath.Dir(cfg.PubPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(cfg.CertPath, []byte(root.Certificate), 0600); err != nil {
		return fmt.Errorf("failed to save CA certificate: %w", err)
	}

	if err := os.WriteFile(cfg.KeyPath, []byte(root.PrivateKey), 0600); err != nil {
		return fmt.Errorf("failed to save CA key: %w", err)
	}

	if cfg.PubPath != "" {
		if err := os.WriteFile(cfg.PubPath, []byte(root.PublicKey), 0644); err != nil {
			return fmt.Errorf("failed to save CA public key: %w", err)
		}
	}

	return nil
}

// getParameter fetches a parameter from SSM, retrying transient failures
func getParameter(ctx context.Context, client ParameterAPI, name string) (string, error) {
	output, err := backoff.Retry(ctx, func() (*ssm.GetParameterOutput, error) {
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			var notFound *ssmtypes.ParameterNotFound
			if errors.As(err, &notFound) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return out, nil
	}, retryOptions(name)...)
	if err != nil {
		return "", err
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}
	return *output.Parameter.Value, nil
}

// putParameter puts a parameter in SSM Parameter Store
func putParameter(ctx context.Context, client ParameterAPI, name, value string, paramType ssmtypes.ParameterType) error {
	_, err := backoff.Retry(ctx, func() (*ssm.PutParameterOutput, error) {
		return client.PutParameter(ctx, &ssm.PutParameterInput{
			Name:      aws.String(name),
			Value:     aws.String(value),
			Type:      paramType,
			Overwrite: aws.Bool(true),
		})
	}, retryOptions(name)...)
	if err != nil {
		return err
	}

	log.Info().Str("parameter", name).Msg("Uploaded to SSM Parameter Store")
	return nil
}

func retryOptions(name string) []backoff.RetryOption {
	return []backoff.RetryOption{
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Str("parameter", name).Dur("retry_in", next).Msg("SSM call failed, retrying")
		}),
	}
}
