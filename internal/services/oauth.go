package services

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/token"
	"github.com/go-ferrusgate/ferrusgate/internal/util"
)

// OAuth flow errors
var (
	ErrUnsupportedResponseType = errors.New("unsupported response_type")
	ErrUnsupportedGrantType    = errors.New("unsupported grant_type")
	ErrInvalidClient           = errors.New("invalid OAuth2 client")
	ErrInvalidRedirectURI      = errors.New("invalid redirect_uri")
	ErrInvalidScope            = errors.New("requested scope exceeds client allowance")
	ErrInvalidAuthCode         = errors.New("invalid authorization code")
	ErrUnknownSubject          = errors.New("unknown subject")
)

const authCodeBytes = 32

// OAuthService runs the authorization-code issuance/exchange state machine.
type OAuthService struct {
	store *store.Store
	codec *token.Codec
	cache cache.Cache
	cfg   *config.Config
}

func NewOAuthService(
	s *store.Store,
	codec *token.Codec,
	c cache.Cache,
	cfg *config.Config,
) *OAuthService {
	return &OAuthService{store: s, codec: codec, cache: c, cfg: cfg}
}

// AuthorizeRequest holds the query parameters of GET /oauth/authorize.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	Scope        string
	State        string
}

// Authorize validates the request and mints a single-use authorization
// code bound to the exact redirect URI shown. The redirect check runs
// before any code is materialized so malicious redirects never leak state.
func (o *OAuthService) Authorize(ctx context.Context, req AuthorizeRequest, userID int64) (string, error) {
	if req.ResponseType != "code" {
		return "", ErrUnsupportedResponseType
	}

	client, err := o.store.GetClient(req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidClient
		}
		return "", err
	}

	if !client.AllowsRedirectURI(req.RedirectURI) {
		return "", ErrInvalidRedirectURI
	}

	if !client.AllowsScopes(req.Scope) {
		return "", ErrInvalidScope
	}

	if _, err := o.store.GetUserByID(userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUnknownSubject
		}
		return "", err
	}

	raw, err := util.CryptoRandomBytes(authCodeBytes)
	if err != nil {
		return "", err
	}
	code := hex.EncodeToString(raw)

	record := &models.AuthorizationCode{
		Code:        code,
		ClientID:    req.ClientID,
		UserID:      userID,
		RedirectURI: req.RedirectURI,
		Scopes:      req.Scope,
		ExpiresAt:   time.Now().Add(o.cfg.AuthCodeExpire),
	}
	if err := o.store.SaveAuthCode(record); err != nil {
		return "", err
	}

	if o.cache != nil {
		_ = o.cache.Set(ctx, cache.AuthCodeKey(code), "valid", o.cfg.AuthCodeExpire)
	}

	log.Printf("Authorization code generated for client %s user %d", client.ClientID, userID)
	return code, nil
}

// TokenRequest holds the body of POST /oauth/token.
type TokenRequest struct {
	GrantType    string
	Code         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// TokenResult is the RFC 6749 §5.1 response shape.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	IDToken      string `json:"id_token,omitempty"`
}

// Token exchanges an authorization code for a token pair. The client is
// authenticated before the code is consumed, and the consumed record's
// client and redirect URI are re-checked without revealing which field
// mismatched.
func (o *OAuthService) Token(ctx context.Context, req TokenRequest) (*TokenResult, error) {
	if req.GrantType != "authorization_code" {
		return nil, ErrUnsupportedGrantType
	}
	if req.Code == "" {
		return nil, ErrInvalidAuthCode
	}

	client, err := o.store.GetClient(req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(client.ClientSecret), []byte(req.ClientSecret)) != 1 {
		return nil, ErrInvalidClient
	}

	// Validate the presented redirect URI against the stored record before
	// consuming: a mismatch must leave the code unconsumed.
	record, err := o.store.ConsumeAuthCodePrechecked(req.Code, req.ClientID, req.RedirectURI)
	if err != nil {
		if errors.Is(err, store.ErrAuthCodeConsumed) {
			return nil, ErrInvalidAuthCode
		}
		return nil, err
	}

	user, err := o.store.GetUserByID(record.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, err
	}

	scopes := strings.Fields(record.Scopes)
	accessToken, err := o.codec.Encode(user.ID, o.cfg.AccessTokenExpire, scopes, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := o.codec.Encode(user.ID, o.cfg.RefreshTokenExpire, []string{"refresh"}, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	clientID := record.ClientID
	accessRecord := &models.AccessToken{
		Token:     accessToken,
		TokenType: token.TokenTypeBearer,
		ClientID:  &clientID,
		UserID:    user.ID,
		Scopes:    record.Scopes,
		ExpiresAt: now.Add(o.cfg.AccessTokenExpire),
	}
	if err := o.store.SaveAccessToken(accessRecord); err != nil {
		return nil, err
	}
	refreshRecord := &models.RefreshToken{
		Token:         refreshToken,
		AccessTokenID: accessRecord.ID,
		ExpiresAt:     now.Add(o.cfg.RefreshTokenExpire),
	}
	if err := o.store.SaveRefreshToken(refreshRecord); err != nil {
		return nil, err
	}

	if o.cache != nil {
		_ = o.cache.Set(ctx, cache.TokenKey(accessToken),
			strconv.FormatInt(user.ID, 10), o.cfg.AccessTokenExpire)
		_ = o.cache.Delete(ctx, cache.AuthCodeKey(req.Code))
	}

	result := &TokenResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    token.TokenTypeBearer,
		ExpiresIn:    int64(o.cfg.AccessTokenExpire.Seconds()),
	}

	if scopeSet(record.Scopes)["openid"] {
		idToken, err := o.codec.EncodeIDToken(token.IDTokenParams{
			Issuer:   o.cfg.BaseURL,
			Subject:  strconv.FormatInt(user.ID, 10),
			Audience: record.ClientID,
			Expiry:   o.cfg.AccessTokenExpire,
			Name:     user.Username,
			Email:    user.Email,
		})
		if err != nil {
			return nil, err
		}
		result.IDToken = idToken
	}

	log.Printf("Access token issued for client %s user %d", client.ClientID, user.ID)
	return result, nil
}

// RevokeToken blacklists a token for its remaining lifetime and drops its
// subject-cache entry. Unknown or already-expired tokens are a no-op.
func (o *OAuthService) RevokeToken(ctx context.Context, tokenString string) error {
	record, err := o.store.FindAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	remaining := time.Until(record.ExpiresAt)
	if remaining > 0 && o.cache != nil {
		if err := o.cache.Set(ctx, cache.BlacklistKey(tokenString), "revoked", remaining); err != nil {
			return err
		}
	}
	if o.cache != nil {
		_ = o.cache.Delete(ctx, cache.TokenKey(tokenString))
	}
	return nil
}

// RevokeClientTokens blacklists and deletes every token the user holds
// for the client.
func (o *OAuthService) RevokeClientTokens(ctx context.Context, userID int64, clientID string) error {
	tokens, err := o.store.RevokeClientAuthorization(userID, clientID)
	if err != nil {
		return err
	}

	if o.cache != nil {
		for _, t := range tokens {
			if remaining := time.Until(t.ExpiresAt); remaining > 0 {
				_ = o.cache.Set(ctx, cache.BlacklistKey(t.Token), "revoked", remaining)
			}
			_ = o.cache.Delete(ctx, cache.TokenKey(t.Token))
		}
	}

	log.Printf("Authorization revoked for user %d client %s", userID, clientID)
	return nil
}

// scopeSet parses a space-separated scope string into a boolean lookup map.
func scopeSet(scopes string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range strings.Fields(scopes) {
		set[s] = true
	}
	return set
}
