package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wolfeidau/easycert/internal/pki"
)

// InspectCmd prints a summary of a PEM certificate
type InspectCmd struct {
	Path   string `arg:"" help:"PEM certificate file" type:"existingfile"`
	Format string `help:"output format" default:"text" enum:"text,json"`
}

// Run executes the inspect command
func (cmd *InspectCmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogger()

	cert, err := loadCertificate(cmd.Path)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}

	return cmd.print(os.Stdout, pki.Describe(cert))
}

func (cmd *InspectCmd) print(w io.Writer, s pki.Summary) error {
	if cmd.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "Subject:      %s\n", s.Subject)
	fmt.Fprintf(w, "Issuer:       %s\n", s.Issuer)
	fmt.Fprintf(w, "Serial:       %s\n", s.SerialNumber)
	fmt.Fprintf(w, "Not Before:   %s\n", s.NotBefore.Format(time.RFC3339))
	fmt.Fprintf(w, "Not After:    %s\n", s.NotAfter.Format(time.RFC3339))
	fmt.Fprintf(w, "CA:           %t\n", s.IsCA)
	fmt.Fprintf(w, "Self Signed:  %t\n", s.SelfSigned)
	if len(s.DNSNames) > 0 {
		fmt.Fprintf(w, "DNS Names:    %s\n", strings.Join(s.DNSNames, ", "))
	}
	if len(s.IPAddresses) > 0 {
		fmt.Fprintf(w, "IP Addresses: %s\n", strings.Join(s.IPAddresses, ", "))
	}
	if s.NSCertType != "" {
		fmt.Fprintf(w, "NS Cert Type: %s\n", s.NSCertType)
	}
	fmt.Fprintf(w, "Extensions:   %s\n", strings.Join(s.Extensions, ", "))

	return nil
}
