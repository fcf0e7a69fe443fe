package pki

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strconv"
	"strings"
)

// Attribute is a single distinguished name attribute. Either Name (long form,
// e.g. "countryName") or ShortName (e.g. "C") identifies the attribute type; a
// dotted OID string is accepted in either field.
type Attribute struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	ShortName string `yaml:"shortName,omitempty" json:"shortName,omitempty"`
	Value     string `yaml:"value" json:"value"`
}

type attributeType struct {
	name      string
	shortName string
	oid       asn1.ObjectIdentifier
}

var attributeTypes = []attributeType{
	{"commonName", "CN", asn1.ObjectIdentifier{2, 5, 4, 3}},
	{"surname", "SN", asn1.ObjectIdentifier{2, 5, 4, 4}},
	{"serialNumber", "serialNumber", asn1.ObjectIdentifier{2, 5, 4, 5}},
	{"countryName", "C", asn1.ObjectIdentifier{2, 5, 4, 6}},
	{"localityName", "L", asn1.ObjectIdentifier{2, 5, 4, 7}},
	{"stateOrProvinceName", "ST", asn1.ObjectIdentifier{2, 5, 4, 8}},
	{"streetAddress", "street", asn1.ObjectIdentifier{2, 5, 4, 9}},
	{"organizationName", "O", asn1.ObjectIdentifier{2, 5, 4, 10}},
	{"organizationalUnitName", "OU", asn1.ObjectIdentifier{2, 5, 4, 11}},
	{"title", "title", asn1.ObjectIdentifier{2, 5, 4, 12}},
	{"description", "description", asn1.ObjectIdentifier{2, 5, 4, 13}},
	{"postalCode", "postalCode", asn1.ObjectIdentifier{2, 5, 4, 17}},
	{"givenName", "GN", asn1.ObjectIdentifier{2, 5, 4, 42}},
	{"emailAddress", "E", asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}},
	{"domainComponent", "DC", asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}},
}

// DefaultAttrs returns a fresh copy of the built-in default subject attributes.
func DefaultAttrs() []Attribute {
	return []Attribute{
		{Name: "countryName", Value: "CN"},
		{Name: "organizationName", Value: "EasyCert"},
		{ShortName: "ST", Value: "SH"},
		{ShortName: "OU", Value: "EasyCert SSL"},
	}
}

// OID resolves the attribute type. Name takes precedence over ShortName.
func (a Attribute) OID() (asn1.ObjectIdentifier, error) {
	key := a.Name
	if key == "" {
		key = a.ShortName
	}
	if key == "" {
		return nil, fmt.Errorf("%w: attribute with value %q has no name", ErrUnknownAttribute, a.Value)
	}

	for _, t := range attributeTypes {
		if key == t.name || key == t.shortName {
			return t.oid, nil
		}
	}

	if oid, ok := parseDottedOID(key); ok {
		return oid, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, key)
}

// String renders the attribute as SHORT=value.
func (a Attribute) String() string {
	label := a.ShortName
	if label == "" {
		label = a.Name
		for _, t := range attributeTypes {
			if t.name == a.Name {
				label = t.shortName
				break
			}
		}
	}
	return label + "=" + a.Value
}

// buildName converts an ordered attribute set into a pkix.Name. Only ExtraNames is
// populated so the encoded RDN sequence keeps the caller's order.
func buildName(attrs []Attribute) (pkix.Name, error) {
	names := make([]pkix.AttributeTypeAndValue, 0, len(attrs))
	for _, attr := range attrs {
		oid, err := attr.OID()
		if err != nil {
			return pkix.Name{}, err
		}
		names = append(names, pkix.AttributeTypeAndValue{Type: oid, Value: attr.Value})
	}
	return pkix.Name{ExtraNames: names}, nil
}

func withCommonName(defaults []Attribute, commonName string) []Attribute {
	attrs := make([]Attribute, 0, len(defaults)+1)
	attrs = append(attrs, defaults...)
	return append(attrs, Attribute{Name: "commonName", Value: commonName})
}

func parseDottedOID(s string) (asn1.ObjectIdentifier, bool) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, false
	}
	oid := make(asn1.ObjectIdentifier, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		oid = append(oid, n)
	}
	return oid, true
}
