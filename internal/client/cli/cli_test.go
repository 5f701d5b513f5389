package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	out    string
	errOut string
	err    error
}

type harness struct {
	t  *testing.T
	db string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, db: filepath.Join(t.TempDir(), "studydeck.db")}
}

func (h *harness) runWithInput(input string, args ...string) result {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--db", h.db}, args...)
	app := NewApp(full, WithInput(strings.NewReader(input)), WithOutput(&out), WithErrorOutput(&errOut))
	err := app.Run(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func (h *harness) run(args ...string) result {
	h.t.Helper()
	return h.runWithInput("", args...)
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	r := h.run(args...)
	require.NoError(h.t, r.err, "stderr: %s", r.errOut)
	return r.out
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestCLI_Migrate(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("migrate")
	assert.Contains(t, out, "schema version")
}

func TestCLI_RequiresLocalUser(t *testing.T) {
	h := newHarness(t)

	r := h.run("list", "add", "Math")
	require.ErrorIs(t, r.err, errNoUser)

	r = h.run("user", "set", "--name", "Ann")
	require.ErrorContains(t, r.err, "--id")
}

func TestCLI_ListsAndCards(t *testing.T) {
	h := newHarness(t)

	u := decode[models.User](t, h.mustRun("user", "set", "--id", "u1", "--name", "Ann", "--json"))
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, models.DefaultRole, u.Role)

	l := decode[models.List](t, h.mustRun("list", "add", "Math", "-d", "numbers", "--json"))
	require.NotEmpty(t, l.ID)
	assert.Equal(t, "u1", l.UserID)
	require.NotNil(t, l.Description)

	r := h.runWithInput("x + y = z\nsecond line\n\n", "card", "add", l.ID, "Algebra", "--content", "-", "-p", "high", "--json")
	require.NoError(t, r.err, r.errOut)
	c := decode[models.Card](t, r.out)
	assert.Equal(t, "x + y = z\nsecond line", c.Content)
	assert.Equal(t, models.PriorityHigh, c.Priority)

	out := h.mustRun("card", "search", "ALGEBRA")
	assert.Contains(t, out, c.ID)

	out = h.mustRun("card", "like", c.ID)
	assert.Contains(t, out, "1 likes")

	c = decode[models.Card](t, h.mustRun("card", "comment", c.ID, "nice", "--json"))
	require.Len(t, c.Comments, 1)
	assert.Equal(t, "u1", c.Comments[0].UserID)

	r = h.run("card", "update", c.ID, "--fields", `{"title":"Linear algebra","colour":"red"}`, "--json")
	require.NoError(t, r.err)
	assert.Equal(t, "Linear algebra", decode[models.Card](t, r.out).Title)
	assert.Contains(t, r.errOut, "ignoring unknown field")

	out = h.mustRun("list", "show", l.ID)
	assert.Contains(t, out, "Linear algebra")

	out = h.mustRun("list", "rm", l.ID)
	assert.Contains(t, out, "deleted list "+l.ID)

	cards := decode[[]models.Card](t, h.mustRun("card", "ls", "--json"))
	assert.Empty(t, cards)
	cards = decode[[]models.Card](t, h.mustRun("card", "ls", "--all", "--json"))
	require.Len(t, cards, 1)
	assert.True(t, cards[0].IsDeleted)

	r = h.run("card", "add", l.ID, "Orphan")
	require.Error(t, r.err, "cards cannot be added to a deleted list")
}

func TestCLI_ListUpdate(t *testing.T) {
	h := newHarness(t)
	h.mustRun("user", "set", "--id", "u1")
	l := decode[models.List](t, h.mustRun("list", "add", "Math", "--json"))

	l = decode[models.List](t, h.mustRun("list", "update", l.ID, "--title", "Physics", "--json"))
	assert.Equal(t, "Physics", l.Title)
	assert.False(t, l.IsSynced)

	out := h.mustRun("sync", "status")
	assert.Contains(t, out, l.ID)
}

func TestCLI_Sync(t *testing.T) {
	srv := remotetest.NewServer()
	t.Cleanup(srv.Close)
	h := newHarness(t)

	h.mustRun("user", "set", "--id", "u1", "--name", "Ann")
	l := decode[models.List](t, h.mustRun("list", "add", "Math", "--offline", "--json"))
	assert.False(t, l.IsSynced)

	type entity struct {
		Entity models.EntityKind `json:"entity"`
		Pushed int               `json:"pushed"`
		Pulled int               `json:"pulled"`
	}
	report := decode[[]entity](t, h.mustRun("sync", "--api", srv.URL(), "--json"))
	require.Len(t, report, 3)
	assert.Equal(t, models.EntityList, report[0].Entity)
	assert.Equal(t, 1, report[0].Pushed)
	assert.Equal(t, 1, report[0].Pulled)

	require.Len(t, srv.CallsTo(http.MethodPost, "/lists"), 1)
	assert.Equal(t, "u1", srv.Calls()[0].Token)

	out := h.mustRun("sync", "status")
	assert.Contains(t, out, "nothing to push")

	lists := decode[[]models.List](t, h.mustRun("list", "ls", "--json"))
	require.Len(t, lists, 1)
	assert.True(t, lists[0].IsSynced)
}

func TestCLI_SyncErrors(t *testing.T) {
	h := newHarness(t)
	h.mustRun("user", "set", "--id", "u1")

	r := h.run("sync")
	require.ErrorIs(t, r.err, errNoAPI)

	r = h.run("sync", "--api", "http://127.0.0.1:1", "--watch")
	require.ErrorContains(t, r.err, "--watch")
}

func TestCLI_SyncWithoutUser(t *testing.T) {
	srv := remotetest.NewServer()
	t.Cleanup(srv.Close)
	h := newHarness(t)

	r := h.run("sync", "--api", srv.URL())
	require.ErrorContains(t, r.err, "unauthenticated")
	assert.Empty(t, srv.Calls())
}

func TestCLI_TitlePromptedWhenOmitted(t *testing.T) {
	h := newHarness(t)
	h.mustRun("user", "set", "--id", "u1")

	r := h.runWithInput("  Physics \n", "list", "add", "--json")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "Enter title")
	l := decode[models.List](t, r.out)
	assert.Equal(t, "Physics", l.Title)

	r = h.runWithInput("Vectors\nmagnitude and direction\n\n", "card", "add", l.ID, "--content", "-", "--json")
	require.NoError(t, r.err, r.errOut)
	c := decode[models.Card](t, r.out)
	assert.Equal(t, "Vectors", c.Title)
	assert.Equal(t, "magnitude and direction", c.Content)

	r = h.runWithInput("", "list", "add")
	require.ErrorContains(t, r.err, "read title")
}
