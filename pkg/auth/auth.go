package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtAlgorithm = jwt.SigningMethodHS256

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for an operator
func CreateToken(username string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(jwtSecret())
}

// VerifyToken verifies a JWT token
func VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// VerifyReportKey checks if a report key is valid and stamps its last use
func VerifyReportKey(db *gorm.DB, key string) (*database.ReportKey, error) {
	var reportKey database.ReportKey
	if err := db.Where("key = ?", key).First(&reportKey).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	reportKey.LastUsed = &now
	db.Save(&reportKey)

	return &reportKey, nil
}

// EnsureOperatorExists checks if any operator credential exists, if not
// create one from environment variables.
func EnsureOperatorExists(db *gorm.DB) error {
	var count int64
	db.Model(&database.Operator{}).Count(&count)

	if count == 0 {
		username := os.Getenv("OPERATOR_USERNAME")
		if username == "" {
			username = "operator"
		}
		password := os.Getenv("OPERATOR_PASSWORD")
		if password == "" {
			password = "operator123"
		}

		hash, err := HashPassword(password)
		if err != nil {
			return err
		}

		op := database.Operator{
			Username:     username,
			PasswordHash: hash,
		}

		err = db.Create(&op).Error
		if err == nil {
			println("Default operator created: " + username)
		}
		return err
	}
	return nil
}

// GenerateHMACKey creates a signed report key using HMAC-SHA256
func GenerateHMACKey(consumerID string) string {
	secret := os.Getenv("REPORT_KEY_SECRET")
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(consumerID))
	signature := hex.EncodeToString(h.Sum(nil))
	return consumerID + "." + signature
}

// VerifyHMACKey validates an HMAC-signed report key
func VerifyHMACKey(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", errors.New("invalid key format")
	}

	consumerID := parts[0]
	providedSignature := parts[1]

	secret := os.Getenv("REPORT_KEY_SECRET")
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(consumerID))
	expectedSignature := hex.EncodeToString(h.Sum(nil))

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(providedSignature), []byte(expectedSignature)) {
		return "", errors.New("invalid signature")
	}

	return consumerID, nil
}
