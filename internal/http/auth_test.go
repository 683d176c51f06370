package handlers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndLogout(t *testing.T) {
	ta := newApp(t)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.post(t, "/login", "", url.Values{"email": {"alice@avecplaisir.test"}, "password": {"nope"}})
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_, ok := findLog(entries, "auth.login.fail")
	assert.True(t, ok)

	resp = ta.post(t, "/login", "", url.Values{"email": {"alice@avecplaisir.test"}, "password": {"Passw0rd!"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	sid := cookie(resp, "sid")
	require.NotEmpty(t, sid)

	home := body(t, ta.get(t, "/", sid))
	assert.Contains(t, home, "Sign out (Alice)")

	resp = ta.post(t, "/logout", sid, nil)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = ta.get(t, "/cart", sid)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestBlockedAccountIsRefused(t *testing.T) {
	ta := newApp(t)
	staff := ta.signIn(t, "staff")
	blockPath := fmt.Sprintf("/admin/users/%d/block", ta.userID(t, "bob"))
	login := url.Values{"email": {"bob@avecplaisir.test"}, "password": {"Passw0rd!"}}

	resp := ta.post(t, blockPath, ta.signIn(t, "alice"), url.Values{"blocked": {"1"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	entries := captureLogs(t, func() {
		resp = ta.post(t, blockPath, staff, url.Values{"blocked": {"1"}, "until": {"2999-12-31"}})
	})
	assert.Equal(t, "User blocked.", flash(resp))
	_, ok := findLog(entries, "admin.users.block")
	assert.True(t, ok)
	assert.Contains(t, body(t, ta.get(t, "/admin/users", staff)), "Blocked until 2999-12-31")

	resp = ta.post(t, "/login", "", login)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "blocked")

	resp = ta.post(t, blockPath, staff, url.Values{"blocked": {"0"}})
	assert.Equal(t, "User unblocked.", flash(resp))
	resp = ta.post(t, "/login", "", login)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	ta := newApp(t)
	form := url.Values{
		"name":             {"Claire"},
		"email":            {"claire@example.com"},
		"password":         {"Bonj0ur!!"},
		"password_confirm": {"Bonj0ur!!"},
	}
	resp := ta.post(t, "/register", "", form)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.NotEmpty(t, cookie(resp, "sid"))

	var profiles int
	require.NoError(t, ta.db.Get(&profiles, `SELECT COUNT(*) FROM user_profiles p JOIN users u ON u.id = p.user_id WHERE u.email = 'claire@example.com'`))
	assert.Equal(t, 1, profiles)

	resp = ta.post(t, "/register", "", form)
	assert.Equal(t, "/register", resp.Header.Get("Location"))
	assert.Equal(t, "That already exists.", flash(resp))

	form.Set("password_confirm", "different")
	resp = ta.post(t, "/register", "", form)
	assert.Equal(t, "Passwords do not match.", flash(resp))
}

func TestLoginThrottle(t *testing.T) {
	ta := newApp(t, limiter.New(limiter.Config{Max: 2, Expiration: time.Minute}))
	bad := url.Values{"email": {"alice@avecplaisir.test"}, "password": {"guess"}}

	for i := 0; i < 2; i++ {
		resp := ta.post(t, "/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i)
	}
	resp := ta.post(t, "/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// the throttle only sits on the form post
	assert.Equal(t, http.StatusOK, ta.get(t, "/login", "").StatusCode)
}
