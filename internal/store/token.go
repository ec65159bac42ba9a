package store

import (
	"sort"
	"strings"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"gorm.io/gorm"
)

// SaveAccessToken persists an access token. The record's ID is populated
// on return for the refresh-token back-reference.
func (s *Store) SaveAccessToken(token *models.AccessToken) error {
	if err := s.db.Create(token).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// SaveRefreshToken persists a refresh token after verifying its access
// token exists.
func (s *Store) SaveRefreshToken(token *models.RefreshToken) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AccessToken{}).
			Where("id = ?", token.AccessTokenID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Create(token).Error; err != nil {
			return translateErr(err)
		}
		return nil
	})
}

// FindAccessToken looks up a token by its opaque value.
func (s *Store) FindAccessToken(token string) (*models.AccessToken, error) {
	var t models.AccessToken
	if err := s.db.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, translateErr(err)
	}
	return &t, nil
}

// UserAuthorization summarizes the live tokens a user holds for one client.
type UserAuthorization struct {
	ClientID   string    `json:"client_id"`
	ClientName string    `json:"client_name"`
	Scopes     []string  `json:"scopes"`
	GrantedAt  time.Time `json:"granted_at"`
}

// ListUserAuthorizations aggregates the user's unexpired client-bound
// tokens by client, merging scopes and keeping the earliest grant time.
func (s *Store) ListUserAuthorizations(userID int64) ([]UserAuthorization, error) {
	var tokens []models.AccessToken
	err := s.db.Where("user_id = ? AND client_id IS NOT NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}

	byClient := make(map[string]*UserAuthorization)
	for _, t := range tokens {
		clientID := *t.ClientID
		entry, ok := byClient[clientID]
		if !ok {
			entry = &UserAuthorization{
				ClientID:   clientID,
				ClientName: clientID,
				GrantedAt:  t.CreatedAt,
			}
			byClient[clientID] = entry
		}
		for _, sc := range strings.Fields(t.Scopes) {
			found := false
			for _, have := range entry.Scopes {
				if have == sc {
					found = true
					break
				}
			}
			if !found {
				entry.Scopes = append(entry.Scopes, sc)
			}
		}
		if t.CreatedAt.Before(entry.GrantedAt) {
			entry.GrantedAt = t.CreatedAt
		}
	}

	if len(byClient) > 0 {
		clientIDs := make([]string, 0, len(byClient))
		for id := range byClient {
			clientIDs = append(clientIDs, id)
		}
		var clients []models.OAuthClient
		if err := s.db.Where("client_id IN ?", clientIDs).Find(&clients).Error; err != nil {
			return nil, err
		}
		for _, c := range clients {
			if entry, ok := byClient[c.ClientID]; ok {
				entry.ClientName = c.Name
			}
		}
	}

	result := make([]UserAuthorization, 0, len(byClient))
	for _, entry := range byClient {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GrantedAt.Before(result[j].GrantedAt)
	})
	return result, nil
}

// RevokeClientAuthorization deletes every token pair the user holds for
// the client and returns the deleted access tokens so the caller can
// blacklist the still-live ones.
func (s *Store) RevokeClientAuthorization(userID int64, clientID string) ([]models.AccessToken, error) {
	var tokens []models.AccessToken

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND client_id = ?", userID, clientID).
			Find(&tokens).Error; err != nil {
			return err
		}
		if len(tokens) == 0 {
			return nil
		}

		ids := make([]int64, len(tokens))
		for i, t := range tokens {
			ids[i] = t.ID
		}

		if err := tx.Where("access_token_id IN ?", ids).
			Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.AccessToken{}).Error
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteExpiredTokens removes expired access tokens and their refresh
// tokens.
func (s *Store) DeleteExpiredTokens() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&models.AccessToken{}).
			Where("expires_at < ?", time.Now()).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("access_token_id IN ?", ids).
			Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.AccessToken{}).Error
	})
}
