package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stealthcompany.com/wardconsole/internal/couchbase"
)

func TestHolderLifecycle(t *testing.T) {
	h := NewHolder(NewMemoryStore())

	_, err := h.Get()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, "", AccessToken(h))

	require.NoError(t, h.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"}))
	assert.Equal(t, "a1", AccessToken(h))

	// a later Set takes effect on the next read
	require.NoError(t, h.Set(Credentials{AccessToken: "a2", RefreshToken: "r2"}))
	assert.Equal(t, "a2", AccessToken(h))

	require.NoError(t, h.Clear())
	_, err = h.Get()
	assert.ErrorIs(t, err, ErrNoSession)

	// clearing twice is fine
	assert.NoError(t, h.Clear())
}

func TestHolderRejectsHalfPair(t *testing.T) {
	h := NewHolder(NewMemoryStore())

	assert.ErrorIs(t, h.Set(Credentials{AccessToken: "only"}), ErrHalfPair)
	assert.ErrorIs(t, h.Set(Credentials{RefreshToken: "only"}), ErrHalfPair)
	assert.Equal(t, "", AccessToken(h))
}

func TestAccessTokenNilHolder(t *testing.T) {
	assert.Equal(t, "", AccessToken(nil))
}

func TestFileStoreProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	day := NewHolder(NewFileStore(path, "day"))
	night := NewHolder(NewFileStore(path, "night"))

	require.NoError(t, day.Set(Credentials{AccessToken: "d", RefreshToken: "dr"}))
	require.NoError(t, night.Set(Credentials{AccessToken: "n", RefreshToken: "nr"}))

	assert.Equal(t, "d", AccessToken(day))
	assert.Equal(t, "n", AccessToken(night))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, day.Clear())
	assert.Equal(t, "", AccessToken(day))
	assert.Equal(t, "n", AccessToken(night))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewHolder(NewFileStore(path, "default")).Get()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestFileStoreLoginReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path, "default")
	creds := Credentials{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, store.Save(creds))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestFileStoreLogoutClearsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	store := NewFileStore(path, "default")
	require.NoError(t, store.Delete())

	_, err := NewHolder(store).Get()
	assert.ErrorIs(t, err, ErrNoSession)
}

type fakeDocs struct {
	docs map[string][]byte
}

func (f *fakeDocs) UpsertDocument(_ context.Context, id string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	f.docs[id] = raw
	return nil
}

func (f *fakeDocs) GetDocument(_ context.Context, id string, result interface{}) error {
	raw, ok := f.docs[id]
	if !ok {
		return couchbase.ErrNotFound
	}
	return json.Unmarshal(raw, result)
}

func (f *fakeDocs) DeleteDocument(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func TestCouchbaseStore(t *testing.T) {
	docs := &fakeDocs{docs: map[string][]byte{}}
	h := NewHolder(NewCouchbaseStore(docs, "ward-3"))

	_, err := h.Get()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, h.Set(Credentials{AccessToken: "a", RefreshToken: "r"}))
	assert.Contains(t, docs.docs, "session::ward-3")
	assert.Equal(t, "a", AccessToken(h))

	require.NoError(t, h.Clear())
	assert.NotContains(t, docs.docs, "session::ward-3")
}

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(-time.Minute)
	tok := signedToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		PreferredUsername: "nurse.joy",
		Role:              "ROLE_nurse",
		Roles:             []string{"NURSE", "pharmacist"},
	})

	claims, err := ParseClaims(tok)
	require.NoError(t, err)

	assert.Equal(t, "nurse.joy", claims.Username())
	assert.Equal(t, []string{"NURSE", "PHARMACIST"}, claims.AllRoles())
	assert.True(t, claims.HasRole("nurse"))
	assert.True(t, claims.HasRole(RolePharmacist))
	assert.False(t, claims.HasRole(RoleAdmin))
	assert.True(t, claims.Expired(time.Now()))
}

func TestParseClaimsAdminHasEveryRole(t *testing.T) {
	tok := signedToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
		Role:             "admin",
	})

	claims, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(RoleNurse))
	assert.False(t, claims.Expired(time.Now()))
	assert.Equal(t, "1", claims.Username())
}

func TestParseClaimsErrors(t *testing.T) {
	_, err := ParseClaims("")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = ParseClaims("not.a.jwt")
	assert.Error(t, err)
}
