package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/normalization"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

// AuthService handles registration, login, and stateless JWT verification.
// Tokens carry the user email as subject; revocation is client-side token
// disposal, there is no server-side session state.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	UserFromToken(ctx context.Context, tokenString string) (*types.User, error)
}

type authService struct {
	userRepo        repos.UserRepo
	settingsService SettingsService
	jwtSecret       []byte
	tokenTTL        time.Duration
	log             *logger.Logger
}

func NewAuthService(
	userRepo repos.UserRepo,
	settingsService SettingsService,
	jwtSecret string,
	tokenTTL time.Duration,
	baseLog *logger.Logger,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		settingsService: settingsService,
		jwtSecret:       []byte(jwtSecret),
		tokenTTL:        tokenTTL,
		log:             baseLog.With("service", "AuthService"),
	}
}

// Register creates an account and bootstraps the premium trial: when the
// runtime trial-days setting is positive the user starts on premium with an
// expiry, otherwise on free with no expiry.
func (as *authService) Register(ctx context.Context, email, password string) (*types.User, error) {
	normalizedEmail := normalization.ParseInputString(email)
	if normalizedEmail == "" {
		return nil, validationErrorf("email is required")
	}
	if !strings.Contains(normalizedEmail, "@") {
		return nil, validationErrorf("email is not valid")
	}
	if password == "" {
		return nil, validationErrorf("password is required")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, normalizedEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	trialDays, err := as.settingsService.GetPremiumTrialDays(ctx, nil)
	if err != nil {
		return nil, err
	}
	planType := types.PlanFree
	var trialExpiresAt *time.Time
	if trialDays > 0 {
		planType = types.PlanPremium
		expiry := time.Now().UTC().Add(time.Duration(trialDays) * 24 * time.Hour)
		trialExpiresAt = &expiry
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		Email:          normalizedEmail,
		Password:       string(hashed),
		IsActive:       true,
		PlanType:       planType,
		TrialExpiresAt: trialExpiresAt,
	}
	created, err := as.userRepo.Create(ctx, nil, []*types.User{user})
	if err != nil {
		return nil, err
	}

	as.log.Info("User registered", "user_id", created[0].ID, "plan_type", planType, "trial_days", trialDays)
	return created[0], nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	normalizedEmail := normalization.ParseInputString(email)
	if normalizedEmail == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{normalizedEmail})
	if err != nil {
		return "", nil, err
	}
	if len(users) == 0 {
		return "", nil, ErrInvalidCredentials
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInactiveUser
	}

	token, err := as.createAccessToken(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UserFromToken verifies the signature and expiry, then resolves the subject
// email to a live user. Deactivated accounts fail even with a valid token.
func (as *authService) UserFromToken(ctx context.Context, tokenString string) (*types.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrInvalidCredentials
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{subject})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}
	user := users[0]
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (as *authService) createAccessToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(as.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
