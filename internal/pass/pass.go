// Package pass signs registration passes and renders them as QR codes.
package pass

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"charity-events/internal/models"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

var encoding = base64.RawURLEncoding

type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Signer{secret: hashed[:]}
}

// Token returns base64url(json).base64url(hmac).
func (s *Signer) Token(claims models.PassClaims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	body := encoding.EncodeToString(payload)
	return body + "." + encoding.EncodeToString(s.sign(body)), nil
}

// Verify checks the signature and returns the claims. Any malformed or
// tampered token is a models.ErrValidation.
func (s *Signer) Verify(token string) (models.PassClaims, error) {
	var claims models.PassClaims

	body, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || body == "" || sig == "" {
		return claims, fmt.Errorf("%w: malformed pass token", models.ErrValidation)
	}
	got, err := encoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, s.sign(body)) {
		return claims, fmt.Errorf("%w: invalid pass signature", models.ErrValidation)
	}
	payload, err := encoding.DecodeString(body)
	if err != nil {
		return claims, fmt.Errorf("%w: malformed pass token", models.ErrValidation)
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("%w: malformed pass token", models.ErrValidation)
	}
	return claims, nil
}

// QR renders the signed token as a PNG.
func (s *Signer) QR(claims models.PassClaims) ([]byte, error) {
	token, err := s.Token(claims)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, qrSize)
}

func (s *Signer) sign(body string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return mac.Sum(nil)
}
