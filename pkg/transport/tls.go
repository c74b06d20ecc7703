package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// ErrTLS indicates a certificate or TLS negotiation failure. The
// secure variant of this protocol never downgrades: a connection whose
// certificate chain cannot be verified is refused.
var ErrTLS = errors.New("tls failure")

// NewClientTLSConfig creates the TLS configuration for connecting to a
// multiworld server. Certificate verification is mandatory; there is
// deliberately no option to skip it here. Tests that need a custom
// trust root supply their own *tls.Config via Config.TLSConfig.
func NewClientTLSConfig(serverName string) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}
}

// classifyDialError wraps certificate and TLS negotiation failures in
// ErrTLS so callers can distinguish them from plain network errors.
func classifyDialError(err error) error {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		certInvalid      x509.CertificateInvalidError
		recordHeader     tls.RecordHeaderError
		verifyErr        *tls.CertificateVerificationError
	)
	if errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalid) ||
		errors.As(err, &recordHeader) ||
		errors.As(err, &verifyErr) {
		return fmt.Errorf("%w: %v", ErrTLS, err)
	}
	return fmt.Errorf("dial failed: %w", err)
}
