package usuario

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRegistrado   = errors.New("el email ya está registrado")
	ErrCredenciales      = errors.New("credenciales inválidas")
	ErrCuentaDesactivada = errors.New("cuenta desactivada")
	ErrTokenInvalido     = errors.New("token inválido o expirado")
)

type CustomClaims struct {
	UserID int    `json:"id"`
	Email  string `json:"email"`
	Rol    Rol    `json:"rol"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// TokenManager issues and parses the session JWTs. The secret is injected at
// construction so tests can use a throwaway key.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
}

func (tm *TokenManager) Generate(u *Usuario) (string, error) {
	claims := CustomClaims{
		UserID: u.ID,
		Email:  u.Email,
		Rol:    u.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) Parse(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return tm.secret, nil
		},
	)
	if err != nil {
		return nil, ErrTokenInvalido
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}
