package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"

	"github.com/spf13/afero"
)

const hostKeyBits = 2048

// Initialize sets up the configuration directory. Existing files are kept.
func Initialize(dir string, logger *log.Logger) error {
	return initializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initializeFs(fs afero.Fs, logger *log.Logger) error {
	if exists, err := afero.Exists(fs, ConfigurationName); err != nil {
		return err
	} else if exists {
		logger.Printf("Found existing %s, keeping it", ConfigurationName)
	} else {
		logger.Printf("Creating %s", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return err
		}
	}

	logger.Printf("Creating %s/", LogsDirName)
	if err := fs.MkdirAll(LogsDirName, 0700); err != nil {
		return err
	}

	if exists, err := afero.Exists(fs, PrivateKeyName); err != nil {
		return err
	} else if exists {
		logger.Printf("Found existing %s, keeping it", PrivateKeyName)
		return nil
	}

	logger.Printf("Generating %s (%d bit RSA)", PrivateKeyName, hostKeyBits)
	key, err := rsa.GenerateKey(rand.Reader, hostKeyBits)
	if err != nil {
		return err
	}

	fd, err := fs.OpenFile(PrivateKeyName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer fd.Close()

	return pem.Encode(fd, &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}
