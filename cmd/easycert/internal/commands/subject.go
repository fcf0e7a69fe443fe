package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wolfeidau/easycert/internal/pki"
	"gopkg.in/yaml.v3"
)

// SubjectConfig is the document read by --subject-file.
type SubjectConfig struct {
	Subject []pki.Attribute `yaml:"subject" json:"subject"`
}

var errEmptySubject = errors.New("subject file has no attributes")

// loadSubjectFile reads an ordered attribute list from YAML, or JSON when the file
// has a .json extension. Every attribute must resolve to a known type.
func loadSubjectFile(path string) ([]pki.Attribute, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject file: %w", err)
	}

	var config SubjectConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON subject: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML subject: %w", err)
		}
	}

	if len(config.Subject) == 0 {
		return nil, errEmptySubject
	}

	for i, attr := range config.Subject {
		if _, err := attr.OID(); err != nil {
			return nil, fmt.Errorf("subject attribute %d: %w", i, err)
		}
	}

	return config.Subject, nil
}
