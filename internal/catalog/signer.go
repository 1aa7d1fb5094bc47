package catalog

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	headerConsumerID = "WM_CONSUMER.ID"
	headerKeyVersion = "WM_SEC.KEY_VERSION"
	headerTimestamp  = "WM_CONSUMER.INTIMESTAMP"
	headerSignature  = "WM_SEC.AUTH_SIGNATURE"
)

// Signer authenticates catalog requests with an RSA-SHA256 signature over
// "consumerID\ntimestamp\n".
type Signer struct {
	consumerID string
	keyVersion string
	key        *rsa.PrivateKey
	now        func() time.Time
}

// NewSigner loads a PEM encoded PKCS#8 or PKCS#1 private key from path.
func NewSigner(consumerID, keyVersion, path string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	key, err := parsePrivateKey(data)
	if err != nil {
		return nil, err
	}
	return newSigner(consumerID, keyVersion, key), nil
}

func newSigner(consumerID, keyVersion string, key *rsa.PrivateKey) *Signer {
	if keyVersion == "" {
		keyVersion = "1"
	}
	return &Signer{consumerID: consumerID, keyVersion: keyVersion, key: key, now: time.Now}
}

func parsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("private key is not PEM encoded")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return key, nil
}

// Sign adds the authentication headers to req.
func (s *Signer) Sign(req *http.Request) error {
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	digest := sha256.Sum256([]byte(s.consumerID + "\n" + ts + "\n"))

	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return fmt.Errorf("failed to sign catalog request: %w", err)
	}

	req.Header.Set(headerConsumerID, s.consumerID)
	req.Header.Set(headerKeyVersion, s.keyVersion)
	req.Header.Set(headerTimestamp, ts)
	req.Header.Set(headerSignature, base64.StdEncoding.EncodeToString(sig))
	return nil
}
