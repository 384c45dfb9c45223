package usuario

import (
	"context"
	"regexp"
	"strings"

	"tienda-be/internal/logger"

	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError is a client-caused rejection; handlers map it to 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

type Service interface {
	Register(ctx context.Context, nombre, email, password string) (string, Usuario, error)
	Login(ctx context.Context, email, password string) (string, Usuario, error)
	Verify(ctx context.Context, token string) (Usuario, error)
	Profile(ctx context.Context, userID int) (Usuario, error)
}

type service struct {
	repo   Repository
	tokens *TokenManager
}

func NewService(repo Repository, tokens *TokenManager) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, nombre, email, password string) (string, Usuario, error) {
	log := logger.FromCtx(ctx)

	if strings.TrimSpace(nombre) == "" || email == "" || password == "" {
		return "", Usuario{}, ValidationError("nombre, email y password son requeridos")
	}
	if !emailRegex.MatchString(email) {
		return "", Usuario{}, ValidationError("email inválido")
	}
	if len(password) < 6 {
		return "", Usuario{}, ValidationError("la contraseña debe tener al menos 6 caracteres")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", Usuario{}, err
	}

	u, err := s.repo.Create(ctx, nombre, strings.ToLower(email), hashed)
	if err != nil {
		log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return "", Usuario{}, err
	}

	token, err := s.tokens.Generate(&u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int("user_id", u.ID), zap.Error(err))
		return "", Usuario{}, err
	}

	log.Info("user registered", zap.Int("user_id", u.ID), zap.String("email", u.Email))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, Usuario, error) {
	if email == "" || password == "" {
		return "", Usuario{}, ValidationError("email y password son requeridos")
	}

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		// Same answer for unknown email and wrong password.
		return "", Usuario{}, ErrCredenciales
	}

	if !u.Activo {
		return "", Usuario{}, ErrCuentaDesactivada
	}

	if !CheckPasswordHash(password, u.Password) {
		return "", Usuario{}, ErrCredenciales
	}

	token, err := s.tokens.Generate(&u)
	if err != nil {
		return "", Usuario{}, err
	}

	logger.FromCtx(ctx).Info("login successful", zap.Int("user_id", u.ID))
	return token, u, nil
}

func (s *service) Verify(ctx context.Context, token string) (Usuario, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Usuario{}, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil || !u.Activo {
		return Usuario{}, ErrTokenInvalido
	}
	return u, nil
}

func (s *service) Profile(ctx context.Context, userID int) (Usuario, error) {
	return s.repo.FindByID(ctx, userID)
}
