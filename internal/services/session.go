package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/auth"
	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/token"
)

var (
	// ErrInvalidCredentials collapses unknown-user and bad-password so the
	// response does not reveal which one happened.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled indicates the account exists but may not log in
	ErrAccountDisabled = errors.New("user account is disabled")
)

// Default scopes carried by local-login tokens.
var localLoginScopes = []string{"read", "write"}

// SessionService provides local register and login.
type SessionService struct {
	store  *store.Store
	policy *PolicyService
	codec  *token.Codec
	cache  cache.Cache
	cfg    *config.Config
}

func NewSessionService(
	s *store.Store,
	policy *PolicyService,
	codec *token.Codec,
	c cache.Cache,
	cfg *config.Config,
) *SessionService {
	return &SessionService{
		store:  s,
		policy: policy,
		codec:  codec,
		cache:  c,
		cfg:    cfg,
	}
}

// Register validates the candidate against the current policy and creates
// the user with role "user". When the policy requires an invite the code
// is consumed atomically with user creation; losing the consume race
// rolls the user back.
func (s *SessionService) Register(ctx context.Context, candidate RegistrationCandidate) (*models.User, error) {
	cfg, err := s.policy.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Validate(ctx, cfg, candidate); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(candidate.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     candidate.Username,
		Email:        candidate.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	inviteCode := ""
	if cfg.RequireInviteCode {
		inviteCode = candidate.InviteCode
	}
	if err := s.store.RegisterUser(user, inviteCode); err != nil {
		return nil, err
	}

	log.Printf("User registered: %s (id: %d)", user.Username, user.ID)
	return user, nil
}

// LoginResult carries the issued token pair.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// Login authenticates the credentials and mints an access/refresh token
// pair with the user's current role. The unknown-user path burns a dummy
// hash verification so its latency matches the bad-password path.
func (s *SessionService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.BurnVerification(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsDeleted() || !user.IsActive {
		return nil, ErrAccountDisabled
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// Best-effort; a failed stamp must not break the login.
	_ = s.store.UpdateLoginInfo(user.ID)

	accessToken, err := s.codec.Encode(user.ID, s.cfg.AccessTokenExpire, localLoginScopes, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Encode(user.ID, s.cfg.RefreshTokenExpire, []string{"refresh"}, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	accessRecord := &models.AccessToken{
		Token:     accessToken,
		TokenType: token.TokenTypeBearer,
		ClientID:  nil, // local-login tokens are not client-bound
		UserID:    user.ID,
		Scopes:    "read write",
		ExpiresAt: now.Add(s.cfg.AccessTokenExpire),
	}
	if err := s.store.SaveAccessToken(accessRecord); err != nil {
		return nil, err
	}
	refreshRecord := &models.RefreshToken{
		Token:         refreshToken,
		AccessTokenID: accessRecord.ID,
		ExpiresAt:     now.Add(s.cfg.RefreshTokenExpire),
	}
	if err := s.store.SaveRefreshToken(refreshRecord); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cache.TokenKey(accessToken),
			strconv.FormatInt(user.ID, 10), s.cfg.AccessTokenExpire)
	}

	log.Printf("User logged in: %s (id: %d)", user.Username, user.ID)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    token.TokenTypeBearer,
		ExpiresIn:    int64(s.cfg.AccessTokenExpire.Seconds()),
	}, nil
}
