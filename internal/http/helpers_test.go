package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"avecplaisir/internal/config"
	"avecplaisir/internal/http/handlers"
	"avecplaisir/internal/repos"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	users *repos.UserRepo
	media string
	csrf  string
}

// newApp builds the full router over a fresh in-memory store. loginGuards
// are passed through to POST /login.
func newApp(t *testing.T, loginGuards ...fiber.Handler) *testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", MediaDir: t.TempDir(), TemplatesDir: "../../web/templates"}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine := html.New(cfg.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax", ContextKey: "csrf"}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	handlers.Routes(app, handlers.NewDeps(db, cfg), loginGuards...)

	ta := &testApp{app: app, db: db, users: repos.NewUserRepo(db), media: cfg.MediaDir}
	resp := ta.get(t, "/login", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ta.csrf = cookie(resp, "csrf_")
	require.NotEmpty(t, ta.csrf)
	return ta
}

// signIn binds a fresh session to the seeded account and returns its sid.
func (ta *testApp) signIn(t *testing.T, name string) string {
	t.Helper()
	u, err := ta.users.ByEmail(name + "@avecplaisir.test")
	require.NoError(t, err)
	sid := "sid-" + name
	require.NoError(t, ta.users.BindSession(sid, u.ID))
	return sid
}

func (ta *testApp) userID(t *testing.T, name string) int64 {
	t.Helper()
	u, err := ta.users.ByEmail(name + "@avecplaisir.test")
	require.NoError(t, err)
	return u.ID
}

func (ta *testApp) do(t *testing.T, req *http.Request, sid string) *http.Response {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: ta.csrf})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) get(t *testing.T, path, sid string) *http.Response {
	return ta.do(t, httptest.NewRequest(http.MethodGet, path, nil), sid)
}

func (ta *testApp) post(t *testing.T, path, sid string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", ta.csrf)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ta.do(t, req, sid)
}

// postFile sends a multipart form with one file part named "image".
func (ta *testApp) postFile(t *testing.T, path, sid string, form url.Values, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	require.NoError(t, w.WriteField("csrf", ta.csrf))
	fw, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ta.do(t, req, sid)
}

// mediaFiles lists the regular files stored under the media subdirectory.
func (ta *testApp) mediaFiles(t *testing.T, sub string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(ta.media, sub))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// flash returns the message set on a redirect, without its kind prefix.
func flash(resp *http.Response) string {
	v, _ := url.QueryUnescape(cookie(resp, "flash"))
	_, msg, _ := strings.Cut(v, "|")
	return msg
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
