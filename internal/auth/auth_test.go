package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/config"
	"github.com/yanizio/sitedesk/internal/identity"
)

const secret = "0123456789abcdef0123456789abcdef"

func newTokens(now time.Time) *Tokens {
	t := NewTokens(config.Auth{JWTSecret: secret, Issuer: "sitedesk", TokenTTL: time.Hour})
	t.now = func() time.Time { return now }
	return t
}

func TestIssueParseRoundTrip(t *testing.T) {
	now := time.Now()
	tok := newTokens(now)

	raw, issued, err := tok.Issue(42)
	require.NoError(t, err)

	got, err := tok.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, got.ID)
	id, err := got.IdentityID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestParseRejects(t *testing.T) {
	now := time.Now()
	tok := newTokens(now)
	raw, _, err := tok.Issue(42)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTokens(now.Add(2 * time.Hour))
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokens(config.Auth{JWTSecret: secret, Issuer: "elsewhere", TokenTTL: time.Hour})
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokens(config.Auth{JWTSecret: secret + "x", Issuer: "sitedesk", TokenTTL: time.Hour})
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			ID: "x", Subject: "42", Issuer: "sitedesk",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tok.Parse(none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tok.Parse("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

type fakeIDs map[uint64]*identity.Identity

func (f fakeIDs) ByID(_ context.Context, id uint64) (*identity.Identity, error) {
	if i, ok := f[id]; ok {
		return i, nil
	}
	return nil, apperr.ErrNotFound
}

type fakeDenylist map[string]bool

func (f fakeDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

func TestMiddleware(t *testing.T) {
	now := time.Now()
	tok := newTokens(now)
	ids := fakeIDs{
		1: {ID: 1, Username: "ada", IsClient: true, IsActive: true},
		2: {ID: 2, Username: "bob", IsClient: true, IsActive: false},
	}

	good, _, _ := tok.Issue(1)
	inactive, _, _ := tok.Issue(2)
	unknown, _, _ := tok.Issue(3)
	revoked, revClaims, _ := tok.Issue(1)
	deny := fakeDenylist{revClaims.ID: true}

	var seen *identity.Identity
	h := NewAuthenticator(tok, deny, ids).Middleware(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen, _ = FromContext(r.Context())
			_, ok := ClaimsFromContext(r.Context())
			assert.True(t, ok)
			w.WriteHeader(http.StatusNoContent)
		}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + good, http.StatusNoContent},
		{"lowercase scheme", "bearer " + good, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized},
		{"inactive", "Bearer " + inactive, http.StatusUnauthorized},
		{"unknown identity", "Bearer " + unknown, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/websites", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, uint64(1), seen.ID)
				return
			}
			assert.Nil(t, seen)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.EqualValues(t, http.StatusUnauthorized, body["code"])
		})
	}
}

func TestRequireAnonymous(t *testing.T) {
	_, err := Require(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRevocations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	rev := NewRevocations(sqlx.NewDb(db, "mysql"))
	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO revoked_token (jti, expires_at) VALUES (?, ?)")).
		WithArgs("abc", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM revoked_token WHERE jti = ?")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM revoked_token WHERE jti = ?")).
		WithArgs("zzz").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM revoked_token WHERE expires_at < ?")).
		WithArgs(exp).
		WillReturnResult(sqlmock.NewResult(0, 3))

	ctx := context.Background()
	require.NoError(t, rev.Revoke(ctx, "abc", exp))

	ok, err := rev.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rev.IsRevoked(ctx, "zzz")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := rev.Purge(ctx, exp)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
