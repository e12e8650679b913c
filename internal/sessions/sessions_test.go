package sessions

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/config"
	"github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "sessions-test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	hash, err := security.HashPassword("secret")
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.User{Email: "player@example.com", Username: "player", Password: hash}).Error)

	return NewService(conn, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}), conn
}

func TestLogin_IssuesStoredToken(t *testing.T) {
	svc, conn := setup(t)

	session, err := svc.Login(context.Background(), "Player@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "player", session.User.Username)
	assert.NotEmpty(t, session.Token.Token)

	var rows []models.APIToken
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, session.Token.TokenID, rows[0].TokenID)
	assert.Equal(t, session.User.ID, rows[0].UserID)
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Login(context.Background(), "", "")
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	_, err = svc.Login(context.Background(), "player@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))

	_, err = svc.Login(context.Background(), "ghost@example.com", "secret")
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}

func TestAuthenticate_AndLogout(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "player@example.com", "secret")
	require.NoError(t, err)

	principal, err := svc.Authenticate(ctx, session.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, principal.User.ID)
	assert.Equal(t, session.Token.TokenID, principal.TokenID)

	require.NoError(t, svc.Logout(ctx, principal.TokenID))

	_, err = svc.Authenticate(ctx, session.Token.Token)
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}

func TestAuthenticate_RejectsGarbage(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))

	_, err = svc.Authenticate(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}

func TestPruneExpired(t *testing.T) {
	svc, conn := setup(t)
	now := time.Now().UTC()

	require.NoError(t, conn.Create(&models.APIToken{UserID: 1, TokenID: "old", ExpiresAt: now.Add(-time.Minute)}).Error)
	require.NoError(t, conn.Create(&models.APIToken{UserID: 1, TokenID: "fresh", ExpiresAt: now.Add(time.Hour)}).Error)

	pruned, err := svc.PruneExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	var remaining []models.APIToken
	require.NoError(t, conn.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].TokenID)
}
