package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"rewecart/internal/commands"
	"rewecart/internal/config"
	"rewecart/internal/exitcode"
	"rewecart/internal/mapping"
	"rewecart/internal/matching"
	"rewecart/internal/service"
	"rewecart/internal/settings"
	"rewecart/internal/store"
	"rewecart/internal/testutil"
)

// harness wires commands to in-memory fakes. State persists across runs.
type harness struct {
	env   *commands.Env
	svc   *testutil.FakeService
	shop  *testutil.FakeStorefront
	store *store.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.TokenEnv, "")

	h := &harness{
		svc:   testutil.NewFakeService(),
		shop:  testutil.NewFakeStorefront(),
		store: store.NewMemory(),
	}
	h.env = &commands.Env{
		Cfg:        &config.Config{Dir: t.TempDir()},
		Svc:        h.svc,
		Log:        zerolog.Nop(),
		Storefront: h.shop,
		NewService: func(ctx context.Context, cfg *config.Config, token string) (service.Service, error) {
			if token == "bad-token" {
				return nil, service.ErrAuth
			}
			return h.svc, nil
		},
		OpenStore: func(ctx context.Context) (store.Store, error) {
			return h.store, nil
		},
	}
	return h
}

// run executes cmd with args and returns its output and exit code.
func (h *harness) run(t *testing.T, cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), h.env, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// input sets what prompting commands read.
func (h *harness) input(s string) {
	h.env.In = strings.NewReader(s)
}

// groceries adds a shopping project with two tagged tasks and one untagged.
func (h *harness) groceries() {
	h.svc.AddProject("p1", "Einkauf")
	h.svc.AddSection("p1", "s1", "Kühlregal")
	h.svc.AddTask("p1", "s1", "t1", "2x Milch", "rewe")
	h.svc.AddTask("p1", "", "t2", "Äpfel", "rewe")
	h.svc.AddTask("p1", "", "t3", "Drucker reparieren")

	h.shop.AddProducts("Milch",
		matching.RawRecord{ID: "100", Name: "Vollmilch", Price: "1,19 €", Link: "https://shop.example/p/vollmilch/100"},
		matching.RawRecord{ID: "200", Name: "Butter", Price: "2,49 €"},
	)
	h.shop.AddProducts("Bio Äpfel",
		matching.RawRecord{ID: "300", Name: "Bio Äpfel Elstar", Price: "2,99 €"},
		matching.RawRecord{ID: "301", Name: "Bio Äpfel Braeburn", Price: "3,29 €"},
	)
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	cmd := &commands.StartCmd{}
	cmd.SetSelection("", "", "rewe")
	if _, stderr, code := h.run(t, cmd); code != exitcode.Success {
		t.Fatalf("start failed with code %d: %s", code, stderr)
	}
}

func (h *harness) savedMappings(t *testing.T) map[string]matching.Candidate {
	t.Helper()
	all, err := mapping.New(h.store).All(context.Background())
	if err != nil {
		t.Fatalf("failed to read mappings: %v", err)
	}
	return all
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.VersionCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "rewecart 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.HelpCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

func TestRegistry_FindsAliases(t *testing.T) {
	for alias, name := range map[string]string{
		"lists": "projects",
		"next":  "current",
		"add":   "pick",
		"done":  "close",
		"run":   "transfer",
		"PICK":  "pick",
	} {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("expected %q to resolve, got nil", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("expected %q to resolve to %q, got %q", alias, name, cmd.Name())
		}
	}
}

func TestRegistry_RejectsNameClash(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.CloseCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.Register(&commands.CloseCmd{})
	if err == nil || err.Error() != "command name already registered: close" {
		t.Errorf("expected name clash, got %v", err)
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("expected 1 command, got %d", got)
	}
}

func TestRegistry_Suggest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"trasnfer", "transfer"},
		{"sumary", "summary"},
		{"mapings", "mappings"},
		{"dne", "close"},
		{"groceries", ""},
	}
	for _, tt := range tests {
		got, ok := commands.DefaultRegistry.Suggest(tt.in)
		if ok != (tt.want != "") || got != tt.want {
			t.Errorf("Suggest(%q) = %q, %v; want %q", tt.in, got, ok, tt.want)
		}
	}
}

// Tests for projects command
func TestProjectsCommand(t *testing.T) {
	h := newHarness(t)
	h.svc.AddProject("p1", "Einkauf")
	h.svc.AddSection("p1", "s1", "Obst")
	h.svc.AddSection("p1", "s2", "Kühlregal")
	h.svc.AddProject("p2", "Arbeit")

	stdout, stderr, code := h.run(t, &commands.ProjectsCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "Einkauf\n    Obst\n    Kühlregal\nArbeit\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestProjectsCommand_BackendError(t *testing.T) {
	h := newHarness(t)
	h.svc.ListProjectsErr = &service.FetchError{Op: "list projects", StatusCode: 500}

	_, stderr, code := h.run(t, &commands.ProjectsCmd{})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: list projects: HTTP 500\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestProjectsCommand_AuthError(t *testing.T) {
	h := newHarness(t)
	h.svc.ListProjectsErr = &service.FetchError{Op: "list projects", StatusCode: 401}

	_, stderr, code := h.run(t, &commands.ProjectsCmd{})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "rewecart login") {
		t.Errorf("expected login hint, got %q", stderr)
	}
}

// Tests for tasks command
func TestTasksCommand_FiltersByTag(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	cmd := &commands.TasksCmd{}
	cmd.SetSelection("einkauf", "", "@REWE")
	stdout, stderr, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  2x Milch  @rewe\n   2  Äpfel  @rewe\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestTasksCommand_DefaultTag(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.run(t, &commands.SetCmd{}, "defaultTag", "rewe")

	stdout, _, code := h.run(t, &commands.TasksCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if strings.Contains(stdout, "Drucker") {
		t.Errorf("expected untagged task to be filtered, got:\n%s", stdout)
	}
}

func TestTasksCommand_Section(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	cmd := &commands.TasksCmd{}
	cmd.SetSelection("Einkauf", "kühlregal", "")
	stdout, _, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "   1  2x Milch  @rewe\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestTasksCommand_SectionRequiresProject(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	cmd := &commands.TasksCmd{}
	cmd.SetSelection("", "Kühlregal", "")
	_, stderr, code := h.run(t, cmd)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: --section requires --project\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestTasksCommand_ProjectNotFound(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	cmd := &commands.TasksCmd{}
	cmd.SetSelection("Garten", "", "")
	_, stderr, code := h.run(t, cmd)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "project not found: Garten") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestTasksCommand_Empty(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.TasksCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

// Tests for the step-by-step transfer commands
func TestStartCommand(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	cmd := &commands.StartCmd{}
	cmd.SetSelection("", "", "rewe")
	stdout, stderr, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "transfer started: 2 tasks\n   1  2x Milch  @rewe\n   2  Äpfel  @rewe\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestCurrentCommand_ShowsCandidates(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	stdout, stderr, code := h.run(t, &commands.CurrentCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "[1/2] 2x Milch\n" +
		"      search: Milch\n" +
		"   1  Vollmilch  1,19 €  (90%) *\n" +
		"   2  Butter  2,49 €  (0%)\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestCurrentCommand_ReusesShownCandidates(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	h.run(t, &commands.CurrentCmd{})
	h.run(t, &commands.CurrentCmd{})
	h.run(t, &commands.PickCmd{}, "1")

	if diff := cmp.Diff([]string{"Milch"}, h.shop.Searches()); diff != "" {
		t.Errorf("searches mismatch (-want +got):\n%s", diff)
	}
}

func TestCurrentCommand_Fallback(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.SkipCmd{})

	stdout, _, code := h.run(t, &commands.CurrentCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "no products found, search manually: https://shop.example/productList?search=%C3%84pfel\n") {
		t.Errorf("expected manual search link, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, `   1  Search for "Äpfel" on REWE  Click to search  (80%)`) {
		t.Errorf("expected fallback candidate, got:\n%s", stdout)
	}
}

func TestCurrentCommand_SearchesAgainAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	h.shop.Err = errors.New("connection reset")
	stdout, _, _ := h.run(t, &commands.CurrentCmd{})
	if !strings.Contains(stdout, `Search for "Milch" on REWE`) {
		t.Fatalf("expected fallback candidates, got:\n%s", stdout)
	}

	h.shop.Err = nil
	stdout, stderr, code := h.run(t, &commands.CurrentCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "   1  Vollmilch  1,19 €  (90%) *\n") {
		t.Errorf("expected fresh search results, got:\n%s", stdout)
	}
	if diff := cmp.Diff([]string{"Milch", "Milch"}, h.shop.Searches()); diff != "" {
		t.Errorf("searches mismatch (-want +got):\n%s", diff)
	}
}

func TestCurrentCommand_NoActiveTransfer(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.CurrentCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: no active transfer (run: rewecart start)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestPickCommand_AutomaticCandidate(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	stdout, stderr, code := h.run(t, &commands.PickCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "added: Vollmilch  1,19 €\n" +
		"       https://shop.example/p/vollmilch/100\n" +
		"next: [2/2] Äpfel\n" +
		"      search: Äpfel\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}

	saved := h.savedMappings(t)
	if saved["2x milch"].ID != "100" {
		t.Errorf("expected mapping to product 100, got %+v", saved)
	}
}

func TestPickCommand_ByNumber(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	stdout, _, code := h.run(t, &commands.PickCmd{}, "2")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "added: Butter  2,49 €\n") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestPickCommand_OutOfRange(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	_, stderr, code := h.run(t, &commands.PickCmd{}, "7")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: product number out of range: 7\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestPickCommand_InvalidNumber(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	_, stderr, code := h.run(t, &commands.PickCmd{}, "abc")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid candidate number: abc\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestPickCommand_NoAutomaticCandidate(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.SkipCmd{})

	_, stderr, code := h.run(t, &commands.PickCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "no automatic match") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestPickCommand_FallbackDoesNotSaveMapping(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.SkipCmd{})

	stdout, _, code := h.run(t, &commands.PickCmd{}, "1")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "search manually: https://shop.example/productList?search=%C3%84pfel\n") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if saved := h.savedMappings(t); len(saved) != 0 {
		t.Errorf("expected no mappings, got %+v", saved)
	}
}

func TestPickCommand_Exhausted(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.SkipCmd{})
	h.run(t, &commands.SkipCmd{})

	_, stderr, code := h.run(t, &commands.PickCmd{}, "1")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: no tasks left (run: rewecart summary)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestSkipCommand_FinishReport(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.PickCmd{})

	stdout, stderr, code := h.run(t, &commands.SkipCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "transfer complete: 1 added, 1 skipped\n" +
		"total:     2\n" +
		"completed: 1\n" +
		"skipped:   1\n" +
		"refined:   0\n" +
		"   1  2x Milch  @rewe\n" +
		"cart: https://shop.example/checkout/basket\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestSkipCommand_NotificationsOff(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.run(t, &commands.SetCmd{}, "showNotifications", "false")
	h.run(t, &commands.SetCmd{}, "autoOpenCart", "false")
	h.start(t)
	h.run(t, &commands.PickCmd{})

	stdout, _, _ := h.run(t, &commands.SkipCmd{})

	if strings.Contains(stdout, "transfer complete") {
		t.Errorf("expected no notification line, got:\n%s", stdout)
	}
	if strings.Contains(stdout, "cart:") {
		t.Errorf("expected no cart link, got:\n%s", stdout)
	}
}

func TestRefineCommand(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.SkipCmd{})

	stdout, stderr, code := h.run(t, &commands.RefineCmd{}, "Bio", "Äpfel")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "search term for \"Äpfel\": Bio Äpfel\n" {
		t.Errorf("unexpected output: %q", stdout)
	}

	stdout, _, _ = h.run(t, &commands.CurrentCmd{})
	if !strings.Contains(stdout, "      search: Bio Äpfel\n") {
		t.Errorf("expected refined term, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Bio Äpfel Elstar") {
		t.Errorf("expected refined candidates, got:\n%s", stdout)
	}

	stdout, _, _ = h.run(t, &commands.SummaryCmd{})
	if !strings.Contains(stdout, "refined:   1\n") {
		t.Errorf("expected refined count, got:\n%s", stdout)
	}
}

func TestRefineCommand_EmptyTerm(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	_, stderr, code := h.run(t, &commands.RefineCmd{}, "  ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: search term required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestRefineCommand_SavedProductHint(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.PickCmd{}, "1")
	h.start(t)

	stdout, _, code := h.run(t, &commands.RefineCmd{}, "Bio", "Milch")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	hint := "saved product in use; run: rewecart unmap \"2x Milch\" to search again\n"
	if stdout != "search term for \"2x Milch\": Bio Milch\n"+hint {
		t.Errorf("unexpected output: %q", stdout)
	}

	stdout, _, _ = h.run(t, &commands.CurrentCmd{})
	if !strings.Contains(stdout, "      saved product:\n") || !strings.HasSuffix(stdout, "      "+hint) {
		t.Errorf("expected saved product with hint, got:\n%s", stdout)
	}
}

func TestSavedMappingSkipsSearch(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.PickCmd{}, "1")
	h.start(t)

	stdout, _, code := h.run(t, &commands.CurrentCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "      saved product:\n   1  Vollmilch  1,19 €  (90%) *\n") {
		t.Errorf("expected saved product, got:\n%s", stdout)
	}
	if n := len(h.shop.Searches()); n != 1 {
		t.Errorf("expected 1 storefront search, got %d", n)
	}
}

func TestSummaryCommand(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	stdout, _, code := h.run(t, &commands.SummaryCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "state:     in progress\ntotal:     2\ncompleted: 0\nskipped:   0\nrefined:   0\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestResetCommand(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)

	stdout, _, code := h.run(t, &commands.ResetCmd{})
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("expected ok, got code %d output %q", code, stdout)
	}

	_, _, code = h.run(t, &commands.SummaryCmd{})
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d after reset, got %d", exitcode.UserError, code)
	}
}

// Tests for close command
func TestCloseCommand(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.PickCmd{})
	h.run(t, &commands.SkipCmd{})

	stdout, stderr, code := h.run(t, &commands.CloseCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "closed 1 of 1 tasks\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	if diff := cmp.Diff([]string{"t1"}, h.svc.Closed()); diff != "" {
		t.Errorf("closed tasks mismatch (-want +got):\n%s", diff)
	}

	stdout, _, code = h.run(t, &commands.CloseCmd{})
	if code != exitcode.Success || stdout != "nothing to close\n" {
		t.Errorf("expected nothing to close, got code %d output %q", code, stdout)
	}
}

func TestCloseCommand_All(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.PickCmd{})
	h.run(t, &commands.SkipCmd{})

	cmd := &commands.CloseCmd{}
	cmd.SetAll(true)
	stdout, _, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "closed 2 of 2 tasks\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestCloseCommand_PartialFailure(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.start(t)
	h.run(t, &commands.PickCmd{})
	h.run(t, &commands.PickCmd{}, "1")
	h.svc.CloseTaskErr["t1"] = &service.FetchError{Op: "close task t1", StatusCode: 500}

	stdout, stderr, code := h.run(t, &commands.CloseCmd{})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "closed 1 of 2 tasks\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	if stderr != "error: failed to close task t1: close task t1: HTTP 500\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}

	// A retry only sends what failed.
	delete(h.svc.CloseTaskErr, "t1")
	stdout, _, code = h.run(t, &commands.CloseCmd{})
	if code != exitcode.Success || stdout != "closed 1 of 1 tasks\n" {
		t.Errorf("expected retry to close t1, got code %d output %q", code, stdout)
	}
	if diff := cmp.Diff([]string{"t2", "t1"}, h.svc.Closed()); diff != "" {
		t.Errorf("closed tasks mismatch (-want +got):\n%s", diff)
	}
}

// Tests for the interactive transfer command
func TestTransferCommand_Interactive(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.input("\nr Bio Äpfel\n2\ny\n")

	cmd := &commands.TransferCmd{}
	cmd.SetSelection("Einkauf", "", "rewe")
	stdout, stderr, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{
		"transfer: 2 of 2 tasks left\n",
		"added: Vollmilch  1,19 €\n",
		"no products found, search manually:",
		"      search: Bio Äpfel\n",
		"added: Bio Äpfel Braeburn  3,29 €\n",
		"transfer complete: 2 added, 0 skipped\n",
		"close 2 completed tasks in Todoist? [y/N]: ",
		"closed 2 of 2 tasks\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
	if diff := cmp.Diff([]string{"t1", "t2"}, h.svc.Closed()); diff != "" {
		t.Errorf("closed tasks mismatch (-want +got):\n%s", diff)
	}
	if saved := h.savedMappings(t); saved["äpfel"].ID != "301" {
		t.Errorf("expected mapping for refined pick, got %+v", saved)
	}
}

func TestTransferCommand_QuitAndResume(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	h.input("q\n")
	cmd := &commands.TransferCmd{}
	cmd.SetSelection("", "", "rewe")
	stdout, _, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasSuffix(stdout, "stopped; resume with: rewecart transfer --resume\n") {
		t.Errorf("expected stop message, got:\n%s", stdout)
	}

	h.input("s\ns\n")
	resume := &commands.TransferCmd{}
	resume.SetResume(true)
	stdout, _, code = h.run(t, resume)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "transfer complete: 0 added, 2 skipped\n") {
		t.Errorf("expected final report, got:\n%s", stdout)
	}
	if strings.Contains(stdout, "cart:") || strings.Contains(stdout, "[y/N]") {
		t.Errorf("expected no cart link or close prompt without completed tasks, got:\n%s", stdout)
	}
}

func TestTransferCommand_ResumeWithoutSession(t *testing.T) {
	h := newHarness(t)

	cmd := &commands.TransferCmd{}
	cmd.SetResume(true)
	_, stderr, code := h.run(t, cmd)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: no active transfer (run: rewecart start)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestTransferCommand_SavedMappingIsApplied(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	err := mapping.New(h.store).Put(context.Background(), "2x Milch", matching.Candidate{ID: "100", Name: "Vollmilch", Similarity: 0.9})
	if err != nil {
		t.Fatalf("failed to store mapping: %v", err)
	}
	h.input("")

	cmd := &commands.TransferCmd{}
	cmd.SetSelection("Einkauf", "Kühlregal", "")
	stdout, _, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "added: Vollmilch\n") {
		t.Errorf("expected saved product to be added, got:\n%s", stdout)
	}
	if n := len(h.shop.Searches()); n != 0 {
		t.Errorf("expected no storefront search, got %d", n)
	}
	if n := len(h.svc.Closed()); n != 0 {
		t.Errorf("expected no closed tasks without confirmation, got %d", n)
	}
}

func TestTransferCommand_InvalidChoiceReprompts(t *testing.T) {
	h := newHarness(t)
	h.groceries()
	h.input("x\n9\nr\n1\nn\n")

	cmd := &commands.TransferCmd{}
	cmd.SetSelection("Einkauf", "Kühlregal", "")
	stdout, stderr, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expectedErr := "error: invalid choice: x\n" +
		"error: product number out of range: 9\n" +
		"error: search term required\n"
	if stderr != expectedErr {
		t.Errorf("expected stderr:\n%s\ngot:\n%s", expectedErr, stderr)
	}
	if !strings.Contains(stdout, "added: Vollmilch") {
		t.Errorf("expected pick after reprompt, got:\n%s", stdout)
	}
	if n := len(h.svc.Closed()); n != 0 {
		t.Errorf("expected no closed tasks after declining, got %d", n)
	}
}

func TestTransferCommand_EmptySelection(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	cmd := &commands.TransferCmd{}
	cmd.SetSelection("", "", "lidl")
	stdout, _, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "total:     0\n") {
		t.Errorf("expected empty report, got:\n%s", stdout)
	}
}

// Tests for search command
func TestSearchCommand(t *testing.T) {
	h := newHarness(t)
	h.groceries()

	stdout, stderr, code := h.run(t, &commands.SearchCmd{}, "2x", "Milch")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "search: Milch\n" +
		"   1  Vollmilch  1,19 €  (90%) *\n" +
		"   2  Butter  2,49 €  (0%)\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}

	if _, _, code := h.run(t, &commands.SummaryCmd{}); code != exitcode.UserError {
		t.Errorf("expected search to leave no transfer, got code %d", code)
	}
}

func TestSearchCommand_StorefrontError(t *testing.T) {
	h := newHarness(t)
	h.shop.Err = errors.New("connection refused")

	stdout, _, code := h.run(t, &commands.SearchCmd{}, "Milch")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "no products found, search manually: https://shop.example/productList?search=Milch\n") {
		t.Errorf("expected fallback, got:\n%s", stdout)
	}
}

func TestSearchCommand_NoTerm(t *testing.T) {
	h := newHarness(t)

	_, _, code := h.run(t, &commands.SearchCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

// Tests for mappings and unmap commands
func TestMappingsCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, _ := h.run(t, &commands.MappingsCmd{})
	if stdout != "no saved products\n" {
		t.Errorf("unexpected output: %q", stdout)
	}

	ctx := context.Background()
	cache := mapping.New(h.store)
	cache.Put(ctx, "2x Milch", matching.Candidate{Name: "Vollmilch", Price: "1,19 €"})
	cache.Put(ctx, "Brot", matching.Candidate{Name: "Roggenbrot"})

	stdout, _, code := h.run(t, &commands.MappingsCmd{})
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "2x milch -> Vollmilch  1,19 €\nbrot -> Roggenbrot\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}

	clearCmd := &commands.MappingsCmd{}
	clearCmd.SetClear(true)
	if stdout, _, _ := h.run(t, clearCmd); stdout != "ok\n" {
		t.Errorf("unexpected clear output: %q", stdout)
	}
	if saved := h.savedMappings(t); len(saved) != 0 {
		t.Errorf("expected no mappings after clear, got %+v", saved)
	}
}

func TestUnmapCommand(t *testing.T) {
	h := newHarness(t)
	mapping.New(h.store).Put(context.Background(), "2x Milch", matching.Candidate{Name: "Vollmilch"})

	_, stderr, code := h.run(t, &commands.UnmapCmd{}, "Brot")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: no saved product for: Brot\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}

	stdout, _, code := h.run(t, &commands.UnmapCmd{}, "2X", "MILCH")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("expected ok, got code %d output %q", code, stdout)
	}
	if saved := h.savedMappings(t); len(saved) != 0 {
		t.Errorf("expected mapping removed, got %+v", saved)
	}
}

// Tests for settings, set, export and import commands
func TestSettingsCommand_Defaults(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.SettingsCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "apiToken             = \n" +
		"autoOpenCart         = true\n" +
		"defaultTag           = \n" +
		"fuzzyMatching        = true\n" +
		"maxSearchResults     = 5\n" +
		"showNotifications    = true\n" +
		"similarityThreshold  = 0.7\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestSetCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.SetCmd{}, "maxSearchResults", "3")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("expected ok, got code %d output %q", code, stdout)
	}

	stdout, _, _ = h.run(t, &commands.SettingsCmd{})
	if !strings.Contains(stdout, "maxSearchResults     = 3\n") {
		t.Errorf("expected updated value, got:\n%s", stdout)
	}
}

func TestSetCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing value", []string{"maxSearchResults"}, "error: key and value required\n"},
		{"unknown key", []string{"colour", "blue"}, "error: unknown setting: colour\n"},
		{"bad number", []string{"maxSearchResults", "0"}, "error: maxSearchResults must be a positive integer: 0\n"},
		{"bad threshold", []string{"similarityThreshold", "1.5"}, "error: similarityThreshold must be a number between 0 and 1: 1.5\n"},
		{"bad bool", []string{"fuzzyMatching", "maybe"}, "error: expected true or false: maybe\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, stderr, code := h.run(t, &commands.SetCmd{}, tt.args...)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if !strings.HasPrefix(stderr, tt.want) {
				t.Errorf("expected stderr starting with %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestSettingsCommand_ResetKeepsToken(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.SetCmd{}, "apiToken", "secret123")
	h.run(t, &commands.SetCmd{}, "maxSearchResults", "9")

	cmd := &commands.SettingsCmd{}
	cmd.SetReset(true)
	stdout, _, code := h.run(t, cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "settings reset to defaults\n") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "apiToken             = *****t123\n") {
		t.Errorf("expected token kept, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "maxSearchResults     = 5\n") {
		t.Errorf("expected default restored, got:\n%s", stdout)
	}
}

func TestExportImport(t *testing.T) {
	src := newHarness(t)
	src.run(t, &commands.SetCmd{}, "defaultTag", "rewe")
	src.run(t, &commands.SetCmd{}, "apiToken", "secret123")
	mapping.New(src.store).Put(context.Background(), "2x Milch", matching.Candidate{ID: "100", Name: "Vollmilch"})

	path := filepath.Join(t.TempDir(), "export.json")
	export := &commands.ExportCmd{}
	export.SetFile(path)
	export.SetClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) })
	stdout, _, code := src.run(t, export)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "exported 1 saved products to "+path+"\n" {
		t.Errorf("unexpected output: %q", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if strings.Contains(string(data), "secret123") {
		t.Error("export must not contain the API token")
	}
	doc, err := settings.ParseDocument(data)
	if err != nil {
		t.Fatalf("failed to parse export: %v", err)
	}
	if !doc.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp: %v", doc.Timestamp)
	}

	dst := newHarness(t)
	dst.run(t, &commands.SetCmd{}, "apiToken", "other-token")
	stdout, _, code = dst.run(t, &commands.ImportCmd{}, path)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "imported settings and 1 saved products\n" {
		t.Errorf("unexpected output: %q", stdout)
	}

	stdout, _, _ = dst.run(t, &commands.SettingsCmd{})
	if !strings.Contains(stdout, "defaultTag           = rewe\n") {
		t.Errorf("expected imported tag, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "apiToken             = *******oken\n") {
		t.Errorf("expected local token kept, got:\n%s", stdout)
	}
	if saved := dst.savedMappings(t); saved["2x milch"].ID != "100" {
		t.Errorf("expected imported mapping, got %+v", saved)
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.ExportCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if _, err := settings.ParseDocument([]byte(stdout)); err != nil {
		t.Errorf("expected a valid document on stdout, got %v:\n%s", err, stdout)
	}
}

func TestImportCommand_Stdin(t *testing.T) {
	h := newHarness(t)
	h.input(`{"version":"1.0.0","settings":{"maxSearchResults":8}}`)

	_, _, code := h.run(t, &commands.ImportCmd{}, "-")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	stdout, _, _ := h.run(t, &commands.SettingsCmd{})
	if !strings.Contains(stdout, "maxSearchResults     = 8\n") {
		t.Errorf("expected imported value, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "fuzzyMatching        = true\n") {
		t.Errorf("expected defaults for missing keys, got:\n%s", stdout)
	}
}

func TestImportCommand_InvalidDocument(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"settings":{}}`), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, stderr, code := h.run(t, &commands.ImportCmd{}, path)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid import file format\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestImportCommand_RejectsOutOfRangeSettings(t *testing.T) {
	h := newHarness(t)
	h.input(`{"version":"1.0.0","settings":{"maxSearchResults":0},"mappings":{"Milch":{"name":"Vollmilch"}}}`)

	_, stderr, code := h.run(t, &commands.ImportCmd{}, "-")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid import file format: maxSearchResults must be a positive integer: 0\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if saved := h.savedMappings(t); len(saved) != 0 {
		t.Errorf("expected nothing imported, got %+v", saved)
	}
	stdout, _, _ := h.run(t, &commands.SettingsCmd{})
	if !strings.Contains(stdout, "maxSearchResults     = 5\n") {
		t.Errorf("expected settings unchanged, got:\n%s", stdout)
	}
}

func TestImportCommand_MissingFile(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.ImportCmd{}, filepath.Join(t.TempDir(), "nope.json"))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: read import:") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
