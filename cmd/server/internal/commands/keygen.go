package commands

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/victoai/platform/internal/auth"
)

// KeygenCmd generates an ES256 signing key for the server's token authority.
type KeygenCmd struct {
	Out string `help:"write the PEM key to this path instead of stdout" type:"path"`
}

func (c *KeygenCmd) Run(_ *Globals) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	pem, err := auth.EncodePrivateKeyPEM(key)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	if c.Out == "" {
		fmt.Print(pem)
		return nil
	}
	// Signing key: owner read/write only.
	return os.WriteFile(c.Out, []byte(pem), 0o600)
}
