package nats

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gforma/lead-assistant/pkg/logger"
)

func TestLoadTLS_NoCA(t *testing.T) {
	cfg, err := loadTLS(Config{URL: "nats://localhost:4222"})
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestLoadTLS_IncompleteKeyPair(t *testing.T) {
	_, err := loadTLS(Config{CAFile: "ca.pem", CertFile: "client.pem"})
	require.ErrorIs(t, err, ErrIncompleteTLS)

	_, err = loadTLS(Config{KeyFile: "client.key"})
	require.ErrorIs(t, err, ErrIncompleteTLS)
}

func TestLoadTLS_BadCA(t *testing.T) {
	dir := t.TempDir()

	_, err := loadTLS(Config{CAFile: filepath.Join(dir, "missing.pem")})
	require.Error(t, err)

	garbage := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0o600))
	_, err = loadTLS(Config{CAFile: garbage})
	require.ErrorContains(t, err, "no certificates found")
}

func TestConnectOptions(t *testing.T) {
	log := logger.NewNop()

	plain, err := connectOptions(Config{URL: "nats://localhost:4222"}, connectTimeout, log)
	require.NoError(t, err)

	withToken, err := connectOptions(Config{URL: "nats://localhost:4222", Token: "s3cret"}, connectTimeout, log)
	require.NoError(t, err)
	require.Len(t, withToken, len(plain)+1)

	_, err = connectOptions(Config{CertFile: "client.pem"}, connectTimeout, log)
	require.ErrorIs(t, err, ErrIncompleteTLS)
}

func TestClient_NilConnection(t *testing.T) {
	c := &Client{logger: logger.NewNop()}
	require.False(t, c.IsConnected())
	c.Close()
}

// writeKeyPair writes a self-signed client certificate and its key to dir.
func writeKeyPair(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "lead-assistant"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "client.pem")
	keyFile = filepath.Join(dir, "client.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestLoadTLS_ClientCertWithoutCA(t *testing.T) {
	certFile, keyFile := writeKeyPair(t, t.TempDir())

	cfg, err := loadTLS(Config{CertFile: certFile, KeyFile: keyFile})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Len(t, cfg.Certificates, 1)
	require.Nil(t, cfg.RootCAs)
}

func TestLoadTLS_MissingClientCert(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadTLS(Config{
		CertFile: filepath.Join(dir, "client.crt"),
		KeyFile:  filepath.Join(dir, "client.key"),
	})
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadTLS_CAAndClientCert(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir)

	cfg, err := loadTLS(Config{CAFile: certFile, CertFile: certFile, KeyFile: keyFile})
	require.NoError(t, err)
	require.NotNil(t, cfg.RootCAs)
	require.Len(t, cfg.Certificates, 1)
}

func TestDialTimeout(t *testing.T) {
	require.Equal(t, connectTimeout, dialTimeout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := dialTimeout(ctx)
	require.LessOrEqual(t, got, time.Second)
	require.Greater(t, got, time.Duration(0))

	long, cancelLong := context.WithTimeout(context.Background(), time.Hour)
	defer cancelLong()
	require.Equal(t, connectTimeout, dialTimeout(long))
}

func TestConnect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, Config{URL: "nats://127.0.0.1:1"}, logger.NewNop())
	require.ErrorIs(t, err, context.Canceled)
}
