package config

import (
	"crypto/x509"
	"encoding/pem"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, cfg.Validate())

	t.Run("CreateSessionLog", func(t *testing.T) {
		fd, err := cfg.CreateSessionLog("session.cast")
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("PrivateKeyPem", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)

		block, _ := pem.Decode(keyPem)
		if assert.NotNil(t, block) {
			_, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			assert.Nil(t, err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)

		if err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
			t.Fatal(err)
		}

		keyPemAfter, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)
		assert.Equal(t, keyPem, keyPemAfter, "rerunning init must not replace the host key")
	})
}
