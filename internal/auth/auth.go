package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidHostKey = errors.New("invalid host key")
)

// JoinClaims bind a WebSocket connection to one golfer in one match.
type JoinClaims struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// IssueJoinToken signs an HS256 token for playerID in matchID.
func IssueJoinToken(secret, matchID, playerID string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := JoinClaims{
		MatchID:  matchID,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign join token: %w", err)
	}
	return signed, exp, nil
}

// ParseJoinToken verifies signature, algorithm and expiry.
func ParseJoinToken(secret, token string) (*JoinClaims, error) {
	claims := &JoinClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.MatchID == "" || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewHostKey returns a random host key and its bcrypt hash. Only the hash
// is kept server-side.
func NewHostKey() (string, []byte, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", nil, fmt.Errorf("generate host key: %w", err)
	}
	key := hex.EncodeToString(b)
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash host key: %w", err)
	}
	return key, hash, nil
}

// VerifyHostKey checks a presented key against the stored hash.
func VerifyHostKey(hash []byte, key string) error {
	if key == "" || bcrypt.CompareHashAndPassword(hash, []byte(key)) != nil {
		return ErrInvalidHostKey
	}
	return nil
}
