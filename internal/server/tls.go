package server

import (
	"crypto/rsa"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"

	"livedev/internal/config"
	"livedev/internal/logging"
)

// ErrInvalidTLS is returned when key or cert material is missing.
var ErrInvalidTLS = errors.New("invalid TLS options")

// selectTransport returns the TLS config to serve with, or nil for plain
// HTTP. Unusable key material never aborts startup.
func (s *Server) selectTransport() *tls.Config {
	if s.config.TLS == nil {
		return nil
	}

	tlsConfig, err := loadTLS(s.config.TLS, s.config.Host, s.logger)
	if err != nil {
		if errors.Is(err, ErrInvalidTLS) {
			s.logger.Error("Invalid TLS options", nil)
		}
		s.logger.Error("Unable to start HTTPS server", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil
	}
	return tlsConfig
}

func loadTLS(opts *config.TLSConfig, host string, logger *logging.Logger) (*tls.Config, error) {
	var keyPEM, certPEM []byte
	var err error

	if opts.SelfSigned {
		keyPEM, certPEM, err = selfSigned(host)
		if err != nil {
			return nil, fmt.Errorf("generate self-signed certificate: %w", err)
		}
		logger.Warning("Using a self-signed certificate", map[string]interface{}{
			"host": host,
		})
	} else {
		keyPEM, certPEM, err = readMaterial(opts)
		if err != nil {
			return nil, err
		}
	}

	if _, err := certcrypto.ParsePEMPrivateKey(keyPEM); err != nil {
		return nil, fmt.Errorf("parse TLS key: %w", err)
	}
	certs, err := certcrypto.ParsePEMBundle(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parse TLS certificate: %w", err)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("%w: no certificate in bundle", ErrInvalidTLS)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("load TLS certificate: %w", err)
	}

	if leaf := certs[0]; time.Now().After(leaf.NotAfter) {
		logger.Warning("TLS certificate has expired", map[string]interface{}{
			"subject":   leaf.Subject.CommonName,
			"not_after": leaf.NotAfter.Format(time.RFC3339),
		})
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"http/1.1"},
	}, nil
}

// readMaterial prefers in-memory PEM over file paths.
func readMaterial(opts *config.TLSConfig) (keyPEM, certPEM []byte, err error) {
	if (len(opts.KeyPEM) == 0 && opts.Key == "") || (len(opts.CertPEM) == 0 && opts.Cert == "") {
		return nil, nil, fmt.Errorf("%w: key and cert are both required", ErrInvalidTLS)
	}

	keyPEM = opts.KeyPEM
	if len(keyPEM) == 0 {
		if keyPEM, err = os.ReadFile(opts.Key); err != nil {
			return nil, nil, fmt.Errorf("read TLS key: %w", err)
		}
	}

	certPEM = opts.CertPEM
	if len(certPEM) == 0 {
		if certPEM, err = os.ReadFile(opts.Cert); err != nil {
			return nil, nil, fmt.Errorf("read TLS certificate: %w", err)
		}
	}

	if len(keyPEM) == 0 || len(certPEM) == 0 {
		return nil, nil, fmt.Errorf("%w: empty key or cert", ErrInvalidTLS)
	}
	return keyPEM, certPEM, nil
}

func selfSigned(host string) (keyPEM, certPEM []byte, err error) {
	if host == "" {
		host = "localhost"
	}

	privateKey, err := certcrypto.GeneratePrivateKey(certcrypto.RSA2048)
	if err != nil {
		return nil, nil, err
	}

	certPEM, err = certcrypto.GeneratePemCert(privateKey.(*rsa.PrivateKey), host, nil)
	if err != nil {
		return nil, nil, err
	}

	return certcrypto.PEMEncode(privateKey), certPEM, nil
}
