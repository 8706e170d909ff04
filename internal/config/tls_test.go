package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPKI holds file paths for a throwaway CA and one client certificate.
type testPKI struct {
	CA, Cert, Key string
	Garbage       string
}

func TestTemporalTLS(t *testing.T) {
	pki := newTestPKI(t)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
		check   func(t *testing.T, c *tls.Config)
	}{
		{
			name:  "plaintext",
			cfg:   Config{},
			check: func(t *testing.T, c *tls.Config) { assert.Nil(t, c) },
		},
		{
			name: "client cert only",
			cfg:  Config{TemporalTLSCert: pki.Cert, TemporalTLSKey: pki.Key},
			check: func(t *testing.T, c *tls.Config) {
				require.NotNil(t, c)
				assert.Len(t, c.Certificates, 1)
				assert.Nil(t, c.RootCAs)
			},
		},
		{
			name: "custom CA and server name",
			cfg: Config{
				TemporalTLSCert:       pki.Cert,
				TemporalTLSKey:        pki.Key,
				TemporalTLSCACert:     pki.CA,
				TemporalTLSServerName: "temporal.crisis.internal",
			},
			check: func(t *testing.T, c *tls.Config) {
				require.NotNil(t, c)
				assert.NotNil(t, c.RootCAs)
				assert.Equal(t, "temporal.crisis.internal", c.ServerName)
			},
		},
		{
			name:    "missing key pair",
			cfg:     Config{TemporalTLSCert: "/nonexistent/cert.pem", TemporalTLSKey: "/nonexistent/key.pem"},
			wantErr: "load temporal client cert",
		},
		{
			name:    "unparseable CA",
			cfg:     Config{TemporalTLSCert: pki.Cert, TemporalTLSKey: pki.Key, TemporalTLSCACert: pki.Garbage},
			wantErr: "failed to parse temporal CA cert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.TemporalTLS()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestRedisTLS(t *testing.T) {
	pki := newTestPKI(t)

	got, err := (&Config{}).RedisTLS()
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = (&Config{RedisTLSCACert: pki.CA}).RedisTLS()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.RootCAs)
	assert.Equal(t, uint16(tls.VersionTLS12), got.MinVersion)
	assert.Empty(t, got.Certificates)

	_, err = (&Config{RedisTLSCACert: "/nonexistent/ca.pem"}).RedisTLS()
	assert.ErrorContains(t, err, "read redis CA cert")

	_, err = (&Config{RedisTLSCACert: pki.Garbage}).RedisTLS()
	assert.ErrorContains(t, err, "failed to parse redis CA cert")
}

func newTestPKI(t *testing.T) testPKI {
	t.Helper()
	dir := t.TempDir()
	now := time.Now()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ca := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "crisisdesk test CA"},
		NotBefore:             now,
		NotAfter:              now.Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, ca, ca, &caKey.PublicKey, caKey)
	require.NoError(t, err)

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	leaf := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "crisis-worker"},
		NotBefore:    now,
		NotAfter:     now.Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leaf, ca, &leafKey.PublicKey, caKey)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	require.NoError(t, err)

	pki := testPKI{
		CA:      filepath.Join(dir, "ca.pem"),
		Cert:    filepath.Join(dir, "client.pem"),
		Key:     filepath.Join(dir, "client-key.pem"),
		Garbage: filepath.Join(dir, "garbage.pem"),
	}
	writeBlock(t, pki.CA, "CERTIFICATE", caDER)
	writeBlock(t, pki.Cert, "CERTIFICATE", leafDER)
	writeBlock(t, pki.Key, "EC PRIVATE KEY", keyDER)
	require.NoError(t, os.WriteFile(pki.Garbage, []byte("not a cert"), 0o600))
	return pki
}

func writeBlock(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
