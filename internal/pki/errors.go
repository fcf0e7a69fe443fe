package pki

import "errors"

// Errors
var (
	// ErrKeyGeneration is returned when the RSA key pair cannot be generated.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrParse is returned when certificate or key PEM cannot be decoded.
	ErrParse = errors.New("malformed PEM input")

	// ErrSigning is returned when a certificate draft cannot be signed.
	ErrSigning = errors.New("certificate signing failed")

	// ErrUnknownAttribute is returned when a subject attribute name has no known OID.
	ErrUnknownAttribute = errors.New("unknown subject attribute")

	// ErrExtensionNotFound is returned when a required extension is missing
	ErrExtensionNotFound = errors.New("extension not found")
)
