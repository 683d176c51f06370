package log

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	t.Cleanup(func() {
		stdlog.SetOutput(prevOut)
		stdlog.SetFlags(prevFlags)
	})
	return &buf
}

func TestEntryCarriesRequestContext(t *testing.T) {
	buf := capture(t)

	app := fiber.New()
	app.Post("/cart/add/:id", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals(UserKey, int64(7))
		Audit(c, "cart.add", map[string]any{"product_id": 3})
		Error(c, "cart.add", errors.New("boom"), nil)
		return c.SendStatus(fiber.StatusFound)
	})
	_, err := app.Test(httptest.NewRequest("POST", "/cart/add/3", nil))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var audit, failure entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &audit))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))

	assert.Equal(t, "audit", audit.Level)
	assert.Equal(t, "cart.add", audit.Action)
	assert.Equal(t, "rid-1", audit.ReqID)
	assert.Equal(t, "7", audit.UserID)
	assert.Equal(t, "/cart/add/3", audit.Path)
	assert.EqualValues(t, 3, audit.Fields["product_id"])

	assert.Equal(t, "error", failure.Level)
	assert.Equal(t, "boom", failure.Err)
}

func TestNilContext(t *testing.T) {
	buf := capture(t)
	Info(nil, "startup", map[string]any{"port": "8080"})

	var e entry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &e))
	assert.Equal(t, "info", e.Level)
	assert.Empty(t, e.Path)
	assert.Empty(t, e.UserID)
}
