package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TemporalTLS builds a *tls.Config from the Temporal TLS fields.
// Returns nil, nil if no cert/key is configured (plaintext mode).
func (c *Config) TemporalTLS() (*tls.Config, error) {
	if c.TemporalTLSCert == "" && c.TemporalTLSKey == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(c.TemporalTLSCert, c.TemporalTLSKey)
	if err != nil {
		return nil, fmt.Errorf("load temporal client cert: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ServerName:   c.TemporalTLSServerName,
	}
	if c.TemporalTLSCACert != "" {
		if tlsConfig.RootCAs, err = loadCAPool(c.TemporalTLSCACert, "temporal"); err != nil {
			return nil, err
		}
	}
	return tlsConfig, nil
}

// RedisTLS returns a TLS config trusting REDIS_TLS_CA_CERT, or nil when Redis
// is reached in plaintext.
func (c *Config) RedisTLS() (*tls.Config, error) {
	if c.RedisTLSCACert == "" {
		return nil, nil
	}
	pool, err := loadCAPool(c.RedisTLSCACert, "redis")
	if err != nil {
		return nil, err
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func loadCAPool(path, peer string) (*x509.CertPool, error) {
	caPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s CA cert: %w", peer, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse %s CA cert", peer)
	}
	return pool, nil
}
