package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/easycert/internal/logger"
	"github.com/wolfeidau/easycert/internal/pki"
)

type Globals struct {
	Debug   bool
	Version string
}

func (g *Globals) setupLogger() {
	log.Logger = logger.Setup(g.Debug)
}

// newIssuer builds an issuer, replacing the default subject attributes with the
// contents of subjectFile when one is given.
func newIssuer(subjectFile string, opts ...pki.Option) (*pki.Issuer, error) {
	if subjectFile != "" {
		attrs, err := loadSubjectFile(subjectFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load subject file: %w", err)
		}

		log.Debug().Str("path", subjectFile).Int("attributes", len(attrs)).Msg("Loaded subject attributes")
		opts = append(opts, pki.WithDefaultAttrs(attrs))
	}

	return pki.NewIssuer(opts...), nil
}
