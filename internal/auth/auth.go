// Package auth signs parents up and in and verifies their session tokens.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/app"
	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/repository"
)

// Claims are carried in the session token.
type Claims struct {
	UserID uint64      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is what a successful sign-up or sign-in hands back.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserID    uint64      `json:"user_id"`
	Role      domain.Role `json:"role"`
}

type SignUpInput struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required,min=6" validate:"required,min=6,max=72"`
	Role     string `json:"role" binding:"required" validate:"required,oneof=papa mama"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type Service struct {
	accounts *repository.AccountRepository
	profiles *repository.ProfileRepository
	validate *validator.Validate
	log      *slog.Logger

	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		accounts: repository.NewAccountRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
		validate: validator.New(),
		log:      appCtx.Logger,
		secret:   []byte(appCtx.Config.JWT.Secret),
		ttl:      appCtx.Config.JWT.TTL,
		now:      time.Now,
	}
}

// SignUp creates an account for a free role and signs it in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := s.validate.Struct(in); err != nil {
		return Session{}, errors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return Session{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, in.Email); err == nil {
		return Session{}, domain.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, err
	}
	if _, err := s.profiles.GetByRole(ctx, role); err == nil {
		return Session{}, domain.ErrRoleTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, errors.Wrap(err, "hash password")
	}
	acc := db.Account{Email: in.Email, PasswordHash: string(hash), Role: role}
	if err := s.accounts.Create(ctx, &acc); err != nil {
		return Session{}, err
	}

	s.log.Info("account created", "user", acc.ID, "role", role)
	return s.Issue(acc.ID, role)
}

// SignIn checks the password and issues a fresh token.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (Session, error) {
	if err := s.validate.Struct(in); err != nil {
		return Session{}, errors.Wrap(domain.ErrInvalidInput, err.Error())
	}

	acc, err := s.accounts.GetByEmail(ctx, in.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)) != nil {
		s.log.Warn("sign-in rejected", "email", strings.ToLower(in.Email))
		return Session{}, domain.ErrInvalidCredentials
	}

	if err := s.accounts.TouchLogin(ctx, acc.ID, s.now()); err != nil {
		s.log.Warn("touch login failed", "user", acc.ID, "err", err)
	}
	return s.Issue(acc.ID, acc.Role)
}

// Issue signs an HS256 token for the user.
func (s *Service) Issue(userID uint64, role domain.Role) (Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, errors.Wrap(err, "sign token")
	}
	return Session{Token: signed, ExpiresAt: exp, UserID: userID, Role: role}, nil
}

// Verify parses a token and returns its claims. Any failure reads as
// domain.ErrInvalidToken.
func (s *Service) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.UserID == 0 {
		return Claims{}, domain.ErrInvalidToken
	}
	if _, err := domain.ParseRole(string(claims.Role)); err != nil {
		return Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

// BearerToken strips the "Bearer " prefix from an authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

type claimsKey struct{}

// WithClaims stores the authenticated caller in ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}
