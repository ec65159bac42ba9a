package store

import (
	"encoding/base64"
	"errors"
	"log"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/auth"
	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns every mutation of persistent state. All other components hold
// read-only views or issue command requests through it.
type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.OAuthClient{},
		&models.AuthorizationCode{},
		&models.AccessToken{},
		&models.RefreshToken{},
		&models.AppSetting{},
		&models.InviteCode{},
		&models.ConfigAuditLog{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Seed creates the default admin account, the demo OAuth client, and the
// registration settings when the corresponding tables are empty.
func (s *Store) Seed(adminPassword string) error {
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		password := adminPassword
		if password == "" {
			raw, err := util.CryptoRandomBytes(12)
			if err != nil {
				return err
			}
			password = base64.URLEncoding.EncodeToString(raw)[:16]
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		admin := &models.User{
			Username:     "admin",
			Email:        "admin@localhost",
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if err := s.db.Create(admin).Error; err != nil {
			return err
		}
		if adminPassword == "" {
			log.Printf("Created default user: admin / %s (role: admin)", password)
		} else {
			log.Printf("Created default user: admin (role: admin)")
		}
	}

	var clientCount int64
	s.db.Model(&models.OAuthClient{}).Count(&clientCount)
	if clientCount == 0 {
		client := &models.OAuthClient{
			ClientID:     "test_client_123",
			ClientSecret: "test_secret_456",
			Name:         "Test Client",
			RedirectURIs: models.EncodeRedirectURIs([]string{"http://localhost:3000/callback"}),
			Scopes:       "openid profile email read write",
		}
		if err := s.db.Create(client).Error; err != nil {
			return err
		}
		log.Printf("Created default OAuth client: %s", client.ClientID)
	}

	return s.seedSettings()
}

// User operations

func (s *Store) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

func (s *Store) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// UpdateLoginInfo stamps the last login and bumps the counter. Failures
// must not break a login, so callers ignore the returned error.
func (s *Store) UpdateLoginInfo(id int64) error {
	now := time.Now()
	return s.db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login_at": now,
			"login_count":   gorm.Expr("login_count + 1"),
		}).Error
}

// RegisterUser creates the user and, when inviteCode is non-empty,
// consumes the invite inside the same transaction. If the consume loses a
// race against another registration the user row is rolled back and the
// invite failure kind is returned.
func (s *Store) RegisterUser(user *models.User, inviteCode string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translateErr(err)
		}
		if inviteCode != "" {
			if err := consumeInviteCode(tx, inviteCode, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// OAuth Client operations

func (s *Store) GetClient(clientID string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.Where("client_id = ?", clientID).First(&client).Error; err != nil {
		return nil, translateErr(err)
	}
	return &client, nil
}

// VerifyRedirectURI checks uri against the client's registered list.
// Exact match only; an unknown client fails the check.
func (s *Store) VerifyRedirectURI(clientID, uri string) (bool, error) {
	client, err := s.GetClient(clientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return client.AllowsRedirectURI(uri), nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close drains the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translateErr maps GORM sentinels onto the store's error kinds.
func translateErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
