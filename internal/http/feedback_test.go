package handlers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surveyForm(rec string) url.Values {
	return url.Values{
		"name":            {"Alice Martin"},
		"overall_rating":  {"4"},
		"liked_features":  {"design", "prices"},
		"visit_frequency": {"weekly"},
		"recommendation":  {rec},
		"suggestions":     {"Ship to Lyon"},
		"agree_to_terms":  {"on"},
	}
}

func TestFeedbackSubmission(t *testing.T) {
	ta := newApp(t)
	alice := ta.signIn(t, "alice")

	resp := ta.get(t, "/feedback", "")
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = ta.post(t, "/feedback", alice, surveyForm("11"))
	assert.Equal(t, "/feedback", resp.Header.Get("Location"))
	assert.Contains(t, flash(resp), "recommendation")

	var n int
	require.NoError(t, ta.db.Get(&n, `SELECT COUNT(*) FROM feedback`))
	assert.Zero(t, n)

	form := surveyForm("10")
	form.Del("agree_to_terms")
	resp = ta.post(t, "/feedback", alice, form)
	assert.Contains(t, flash(resp), "agree")

	resp = ta.post(t, "/feedback", alice, surveyForm("10"))
	assert.Equal(t, "/feedback/all", resp.Header.Get("Location"))
	assert.Equal(t, "Thank you for your feedback!", flash(resp))

	var liked, email string
	require.NoError(t, ta.db.Get(&liked, `SELECT liked_features FROM feedback`))
	require.NoError(t, ta.db.Get(&email, `SELECT email FROM feedback`))
	assert.Equal(t, "design,prices", liked)
	assert.Equal(t, "alice@avecplaisir.test", email)

	page := body(t, ta.get(t, "/feedback/all", ""))
	assert.Contains(t, page, "1 reviews")
	assert.Contains(t, page, "10.0")

	mine := body(t, ta.get(t, "/my-feedbacks", alice))
	assert.Contains(t, mine, "Ship to Lyon")
}

func TestFeedbackDeleteAndExport(t *testing.T) {
	ta := newApp(t)
	alice := ta.signIn(t, "alice")
	staff := ta.signIn(t, "staff")
	ta.post(t, "/feedback", alice, surveyForm("7"))

	var id int64
	require.NoError(t, ta.db.Get(&id, `SELECT id FROM feedback`))

	resp := ta.get(t, "/feedback/export", alice)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, flash(resp), "permission")

	resp = ta.get(t, "/feedback/export", staff)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, body(t, resp))

	resp = ta.post(t, fmt.Sprintf("/feedback/delete/%d", id), alice, nil)
	assert.Contains(t, flash(resp), "permission")

	resp = ta.post(t, fmt.Sprintf("/feedback/delete/%d", id), staff, nil)
	assert.Equal(t, "Feedback deleted.", flash(resp))

	var n int
	require.NoError(t, ta.db.Get(&n, `SELECT COUNT(*) FROM feedback`))
	assert.Zero(t, n)
}

func TestStaffControlsFollowRole(t *testing.T) {
	ta := newApp(t)
	alice := ta.signIn(t, "alice")
	ta.post(t, "/feedback", alice, surveyForm("8"))

	page := body(t, ta.get(t, "/feedback/all", alice))
	assert.NotContains(t, page, "/feedback/export")
	assert.NotContains(t, page, "/feedback/delete/")
	assert.NotContains(t, page, `href="/admin"`)

	page = body(t, ta.get(t, "/feedback/all", ta.signIn(t, "staff")))
	assert.Contains(t, page, "/feedback/export")
	assert.Contains(t, page, "/feedback/delete/")
	assert.Contains(t, page, `href="/admin"`)
}
