package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
)

// PolicyError marks a failed registration rule; the message names the
// first violated rule.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

func policyViolation(format string, args ...any) error {
	return &PolicyError{Message: fmt.Sprintf(format, args...)}
}

// Registration policy errors. Validation fails fast on the first violated
// rule.
var (
	ErrRegistrationDisabled  = &PolicyError{"registration is disabled"}
	ErrInvalidEmail          = &PolicyError{"invalid email format"}
	ErrEmailDomainNotAllowed = &PolicyError{"email domain not allowed"}
	ErrInviteRequired        = &PolicyError{"invite code required"}
	ErrUsernameTaken         = &PolicyError{"username already exists"}
	ErrEmailTaken            = &PolicyError{"email already exists"}
)

// PolicyService reads and writes the registration policy and validates
// registration candidates against it.
type PolicyService struct {
	store *store.Store
	cache cache.Cache
}

func NewPolicyService(s *store.Store, c cache.Cache) *PolicyService {
	return &PolicyService{store: s, cache: c}
}

// GetConfig returns the current registration policy, served from the hot
// cache when possible. The store stays authoritative on any miss.
func (p *PolicyService) GetConfig(ctx context.Context) (models.RegistrationConfig, error) {
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cache.KeyRegistrationConfig); err == nil {
			var cfg models.RegistrationConfig
			if err := json.Unmarshal([]byte(cached), &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	cfg, err := p.store.GetRegistrationConfig()
	if err != nil {
		return cfg, err
	}

	if p.cache != nil {
		if encoded, err := json.Marshal(cfg); err == nil {
			_ = p.cache.Set(ctx, cache.KeyRegistrationConfig, string(encoded), 0)
		}
	}
	return cfg, nil
}

// UpdateConfig writes the policy through the store and invalidates the
// cached copy in both tiers.
func (p *PolicyService) UpdateConfig(
	ctx context.Context,
	cfg models.RegistrationConfig,
	updatedBy int64,
) error {
	if err := p.store.UpdateRegistrationConfig(cfg, updatedBy); err != nil {
		return err
	}
	if p.cache != nil {
		_ = p.cache.Delete(ctx, cache.KeyRegistrationConfig)
	}
	return nil
}

// RegistrationCandidate is the input validated against the policy.
type RegistrationCandidate struct {
	Username   string
	Email      string
	Password   string
	InviteCode string
}

// Validate runs the policy checks in order, failing fast on the first
// violation. Invite validity is checked without consuming; consumption
// happens atomically at user creation.
func (p *PolicyService) Validate(
	ctx context.Context,
	cfg models.RegistrationConfig,
	candidate RegistrationCandidate,
) error {
	if !cfg.AllowRegistration {
		return ErrRegistrationDisabled
	}

	if err := checkEmailDomain(cfg, candidate.Email); err != nil {
		return err
	}

	usernameLen := int64(len(candidate.Username))
	if usernameLen < cfg.MinUsernameLength || usernameLen > cfg.MaxUsernameLength {
		return policyViolation("username must be between %d and %d characters",
			cfg.MinUsernameLength, cfg.MaxUsernameLength)
	}

	if err := checkPassword(cfg, candidate.Password); err != nil {
		return err
	}

	if cfg.RequireInviteCode {
		if candidate.InviteCode == "" {
			return ErrInviteRequired
		}
		invite, err := p.store.FindInviteCode(candidate.InviteCode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrInviteNotFound
			}
			return err
		}
		if invite.IsExpired() {
			return store.ErrInviteExpired
		}
		if invite.IsUsedUp() {
			return store.ErrInviteUsedUp
		}
	}

	if _, err := p.store.GetUserByUsername(candidate.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := p.store.GetUserByEmail(candidate.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return nil
}

func checkEmailDomain(cfg models.RegistrationConfig, email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	if len(cfg.AllowedEmailDomains) == 0 {
		return nil
	}
	domain := email[at+1:]
	for _, allowed := range cfg.AllowedEmailDomains {
		if allowed == domain {
			return nil
		}
	}
	return ErrEmailDomainNotAllowed
}

func checkPassword(cfg models.RegistrationConfig, password string) error {
	if int64(len(password)) < cfg.MinPasswordLength {
		return policyViolation("password must be at least %d characters", cfg.MinPasswordLength)
	}

	if cfg.PasswordRequireUppercase && !containsFunc(password, unicode.IsUpper) {
		return policyViolation("password must contain at least one uppercase letter")
	}
	if cfg.PasswordRequireLowercase && !containsFunc(password, unicode.IsLower) {
		return policyViolation("password must contain at least one lowercase letter")
	}
	if cfg.PasswordRequireNumbers && !containsFunc(password, unicode.IsDigit) {
		return policyViolation("password must contain at least one number")
	}
	if cfg.PasswordRequireSpecial && !containsFunc(password, isSpecial) {
		return policyViolation("password must contain at least one special character")
	}
	return nil
}

// isSpecial means any non-alphanumeric printable ASCII codepoint.
func isSpecial(r rune) bool {
	return r >= '!' && r <= '~' &&
		!unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func containsFunc(s string, fn func(rune) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}
	return false
}
