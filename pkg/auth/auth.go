package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/duty-roster-go/pkg/database"
)

// PasswordCost is the bcrypt cost for admin passwords
var PasswordCost = 12

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Claims represents the JWT claims of an admin session
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Signer issues and checks admin tokens and team keys
type Signer struct {
	jwtSecret []byte
	keySecret []byte
	tokenTTL  time.Duration
}

// NewSigner creates a signer from explicit secrets
func NewSigner(jwtSecret, keySecret string) *Signer {
	return &Signer{
		jwtSecret: []byte(jwtSecret),
		keySecret: []byte(keySecret),
		tokenTTL:  24 * time.Hour,
	}
}

// SignerFromEnv reads JWT_SECRET and API_MASTER_SECRET
func SignerFromEnv() *Signer {
	return NewSigner(os.Getenv("JWT_SECRET"), os.Getenv("API_MASTER_SECRET"))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateToken creates a new JWT token for an admin
func (s *Signer) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyToken verifies a JWT token
func (s *Signer) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Signer) sign(team string) string {
	h := hmac.New(sha256.New, s.keySecret)
	h.Write([]byte(team))
	return hex.EncodeToString(h.Sum(nil))
}

// TeamKey creates a signed key of the form "<team>.<hmac>"
func (s *Signer) TeamKey(team string) string {
	return team + "." + s.sign(team)
}

// VerifyTeamKey validates a team key and returns the team name
func (s *Signer) VerifyTeamKey(key string) (string, error) {
	team, signature, ok := strings.Cut(key, ".")
	if !ok || team == "" || strings.Contains(signature, ".") {
		return "", ErrInvalidKeyFormat
	}
	if !hmac.Equal([]byte(signature), []byte(s.sign(team))) {
		return "", ErrInvalidSignature
	}
	return team, nil
}

// Preview masks a key for listings
func Preview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// EnsureAdminExists creates the admin from ADMIN_USERNAME/ADMIN_PASSWORD
// when no admin exists yet. It reports whether a user was created.
func EnsureAdminExists(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&database.AdminUser{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if err := db.Create(&database.AdminUser{Username: username, PasswordHash: hash}).Error; err != nil {
		return false, err
	}
	return true, nil
}
