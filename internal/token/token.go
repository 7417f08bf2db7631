package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var b64 = base64.RawURLEncoding

// ErrInvalidToken covers malformed, tampered and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Signer issues and verifies the compact HS256 tokens that grant read access
// to a poll's detail data after a successful verification handshake. The
// mobile client stores the token locally and replays it on detail requests.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner builds a Signer. ttl bounds how long a verified session's poll
// access outlives the handshake.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// IssuePollAccess signs a token binding a verified session to its poll code.
func (s *Signer) IssuePollAccess(sessionID, pollCode string) (string, error) {
	now := time.Now()
	claims := map[string]any{
		"sid":  sessionID,
		"poll": pollCode,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	return signHS256(claims, s.secret)
}

// VerifyPollAccess checks signature and expiry and returns the bound session
// and poll code.
func (s *Signer) VerifyPollAccess(tok string) (sessionID, pollCode string, err error) {
	claims, err := parseAndVerifyHS256(tok, s.secret)
	if err != nil {
		return "", "", err
	}
	expFloat, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(expFloat) {
		return "", "", fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	sessionID, _ = claims["sid"].(string)
	pollCode, _ = claims["poll"].(string)
	if sessionID == "" || pollCode == "" {
		return "", "", fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return sessionID, pollCode, nil
}

func signHS256(claims map[string]any, secret []byte) (string, error) {
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := b64.EncodeToString(header) + "." + b64.EncodeToString(payload)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	return unsigned + "." + b64.EncodeToString(mac.Sum(nil)), nil
}

func parseAndVerifyHS256(tok string, secret []byte) (map[string]any, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: bad format", ErrInvalidToken)
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: bad signature encoding", ErrInvalidToken)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}
	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad payload encoding", ErrInvalidToken)
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: bad claims json", ErrInvalidToken)
	}
	return claims, nil
}
