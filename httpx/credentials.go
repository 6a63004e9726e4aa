package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/poll-creator/config"
	"github.com/mbolis/poll-creator/log"
)

// RefreshTokenTTL is how long a refresh token can be redeemed.
const RefreshTokenTTL = 30 * 24 * time.Hour

// AdminRole is granted to every operator.
const AdminRole = "admin"

var errRefresh = errors.New("could not refresh")

type credentialsVerifier struct {
	db  *sql.DB
	now func() time.Time
}

// CredentialsVerifier checks operator passwords against the user table and
// keeps track of issued refresh tokens.
func CredentialsVerifier(db *sql.DB) oauth.CredentialsVerifier {
	return &credentialsVerifier{db, time.Now}
}

// NewBearerServer issues operator tokens signed with the configured secret.
func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	var hash []byte
	err := cs.db.
		QueryRowContext(r.Context(), "SELECT password_hash FROM user WHERE username = ?", username).
		Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("login.user: unknown user %q", username)
		}
		return err
	}

	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	_, err := cs.db.Exec(`
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		credential,
		tokenID,
		refreshTokenID,
		cs.now().Add(RefreshTokenTTL).UTC(),
	)
	return err
}

// ValidateTokenID redeems a refresh token: it is valid once.
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	var expiration time.Time
	err := cs.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Errorf("refresh.token: %s", err)
		}
		return errRefresh
	}

	if expiration.Before(cs.now()) {
		return errRefresh
	}
	return nil
}

func (*credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{"roles": AdminRole}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
