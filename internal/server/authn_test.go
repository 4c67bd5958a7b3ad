package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "mallory",
			"email":    "mallory@example.com",
			"password": "longenoughpassword",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decode(t, rec)
		require.Equal(t, "mallory", body["username"])
		require.NotContains(t, rec.Body.String(), "longenoughpassword")
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "mallory",
			"email":    "other@example.com",
			"password": "longenoughpassword",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "shorty",
			"email":    "shorty@example.com",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decode(t, rec)["errors"].(map[string]any)
		require.Contains(t, errs, "password")
	})

	t.Run("reports missing fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decode(t, rec)["errors"].(map[string]any)
		require.Contains(t, errs, "username")
		require.Contains(t, errs, "email")
		require.Contains(t, errs, "password")
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice", nil)

	t.Run("issues token pair", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "alice",
			"password": "correct-horse-battery",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.NotEmpty(t, body["access"])
		require.NotEmpty(t, body["refresh"])
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "No active account found with the given credentials", decode(t, rec)["error"])
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "nobody",
			"password": "whatever",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestWhoAmI(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.registerAndLogin(t, "bob", nil)

	rec := env.do(t, http.MethodGet, "/api/v1/whoami", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, id.String(), body["id"])
	require.Equal(t, "bob", body["username"])
	require.Equal(t, false, body["is_staff"])
	require.Equal(t, false, body["is_superuser"])
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerAndLogin(t, "carol", nil)

	t.Run("wrong old password", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/auth/change-password", token, map[string]string{
			"old_password": "not-it",
			"new_password": "whole-new-password",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"old_password": ["Wrong password."]}`, rec.Body.String())
	})

	t.Run("changes password", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/auth/change-password", token, map[string]string{
			"old_password": "correct-horse-battery",
			"new_password": "whole-new-password",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "carol",
			"password": "whole-new-password",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "dave", nil)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "dave",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decode(t, rec)
	access := tokens["access"].(string)
	refresh := tokens["refresh"].(string)

	t.Run("revokes refresh token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", access, map[string]string{
			"refresh_token": refresh,
		})
		require.Equal(t, http.StatusResetContent, rec.Code)
		require.Empty(t, rec.Body.String())

		// Revoked refresh token can no longer mint new pairs.
		rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
			"refresh": refresh,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token is a bare 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", access, map[string]string{
			"refresh_token": "garbage",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, rec.Body.String())
	})
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "erin", nil)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "erin",
		"password": "correct-horse-battery",
	})
	refresh := decode(t, rec)["refresh"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.NotEmpty(t, body["access"])
	require.NotEmpty(t, body["refresh"])

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh": "junk"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token is invalid or expired", decode(t, rec)["error"])
}

func TestProfileSelfScope(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.registerAndLogin(t, "alice", nil)
	bobID, _ := env.registerAndLogin(t, "bob", nil)

	t.Run("list holds only the caller", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/profiles", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		profiles := decodeList(t, rec)
		require.Len(t, profiles, 1)
		require.Equal(t, aliceID.String(), profiles[0]["id"])
	})

	t.Run("other profiles behave as missing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/profiles/"+bobID.String(), aliceToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("updates own profile", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/auth/profile", aliceToken, map[string]string{
			"first_name": "Alice",
			"department": "secops",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "Alice", body["first_name"])
		require.Equal(t, "secops", body["department"])
	})
}
