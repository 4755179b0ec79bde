package token

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind is the signing context a token belongs to. Access and refresh
// tokens are never interchangeable: the kind is embedded in the claims
// and, under HS256, each kind signs with its own derived key.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Method selects the signature algorithm.
type Method string

const (
	// MethodEd25519 signs with an Ed25519 key pair (default).
	MethodEd25519 Method = "ed25519"
	// MethodHS256 signs with an HMAC-SHA256 shared secret.
	MethodHS256 Method = "hs256"
)

// Typed parse failures. Callers branch on these with errors.Is; the raw
// library error is never surfaced past this package.
var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrWrongKind        = errors.New("wrong token kind")
)

// Claims is the signed payload of an issued token. Version carries the
// subject's revocation version at mint time; the jti lives in
// RegisteredClaims.ID and is the revocation key.
type Claims struct {
	Role    string `json:"role,omitempty"`
	Kind    Kind   `json:"knd"`
	Version int64  `json:"ver"`
	jwt.RegisteredClaims
}

// Config holds Signer construction parameters. Now is the clock used for
// both minting and expiry checks; it defaults to time.Now and is injected
// so expiry behavior is testable without sleeping.
type Config struct {
	Method     Method
	PrivateKey []byte
	PublicKey  []byte
	Issuer     string
	Leeway     time.Duration
	Now        func() time.Time
}

// Signer creates and verifies signed token payloads. It is stateless and
// safe for concurrent use.
type Signer struct {
	config     Config
	accessKey  []byte
	refreshKey []byte
	edPriv     ed25519.PrivateKey
	edPub      ed25519.PublicKey
}

// NewSigner validates the configuration and prepares per-kind signing
// material.
func NewSigner(cfg Config) (*Signer, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Signer{config: cfg}

	switch cfg.Method {
	case MethodHS256:
		if len(cfg.PrivateKey) < 32 {
			return nil, errors.New("hs256 requires a secret of at least 32 bytes")
		}
		// Distinct signing contexts: a payload signed under one kind can
		// never verify under the other, independently of the knd claim.
		s.accessKey = deriveKey(cfg.PrivateKey, KindAccess)
		s.refreshKey = deriveKey(cfg.PrivateKey, KindRefresh)
	case MethodEd25519:
		priv, err := parseEdPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		s.edPriv = priv
		if len(cfg.PublicKey) > 0 {
			pub, err := parseEdPublicKey(cfg.PublicKey)
			if err != nil {
				return nil, err
			}
			s.edPub = pub
		} else {
			s.edPub = priv.Public().(ed25519.PublicKey)
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return s, nil
}

// Create mints a signed token of the given kind. The jti and revocation
// version are supplied by the issuer; iat/exp are stamped from the
// injected clock.
func (s *Signer) Create(kind Kind, subjectID, role, jti string, version int64, ttl time.Duration) (string, error) {
	if kind != KindAccess && kind != KindRefresh {
		return "", errors.New("unknown token kind")
	}
	if subjectID == "" || jti == "" {
		return "", errors.New("missing subject or token id")
	}
	if ttl <= 0 {
		return "", errors.New("non-positive token ttl")
	}

	now := s.config.Now()
	claims := Claims{
		Role:    role,
		Kind:    kind,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subjectID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(s.method(), claims)
	return tok.SignedString(s.signKey(kind))
}

// Parse verifies signature and expiry, then enforces the expected kind.
// Failures map onto ErrMalformed, ErrInvalidSignature, ErrExpired, or
// ErrWrongKind.
func (s *Signer) Parse(raw string, expected Kind) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method().Alg()}),
		jwt.WithTimeFunc(s.config.Now),
		jwt.WithExpirationRequired(),
	}
	if s.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(s.config.Leeway))
	}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(raw, &Claims{}, s.verifyKey)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	if claims.Kind != expected {
		return nil, ErrWrongKind
	}

	return claims, nil
}

// Remaining reports how long the token is still valid on the signer's
// clock. Zero or negative means already expired.
func (s *Signer) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(s.config.Now())
}

// verifyKey selects the verification key. Under HS256 the key is chosen
// from the (still unverified) knd claim, so a kind tampered after signing
// fails the signature check rather than slipping through as WrongKind.
func (s *Signer) verifyKey(t *jwt.Token) (any, error) {
	if t.Method.Alg() != s.method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	if s.config.Method == MethodHS256 {
		claims, ok := t.Claims.(*Claims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}
		switch claims.Kind {
		case KindAccess:
			return s.accessKey, nil
		case KindRefresh:
			return s.refreshKey, nil
		default:
			return nil, errors.New("unknown token kind")
		}
	}

	return s.edPub, nil
}

func (s *Signer) method() jwt.SigningMethod {
	if s.config.Method == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func (s *Signer) signKey(kind Kind) any {
	if s.config.Method == MethodHS256 {
		if kind == KindRefresh {
			return s.refreshKey
		}
		return s.accessKey
	}
	return s.edPriv
}

func deriveKey(secret []byte, kind Kind) []byte {
	h := sha256.New()
	h.Write(secret)
	h.Write([]byte{0})
	h.Write([]byte(kind))
	return h.Sum(nil)
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
