package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quickspese/internal/core"
	"quickspese/internal/services"
)

// runCLI executes one invocation against a state file in dir.
func runCLI(t *testing.T, dir, stdin string, args ...string) string {
	t.Helper()
	root, s := newRootCmd()
	defer s.close()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--backend", "file", "--state-file", filepath.Join(dir, "state.json")}, args...))

	require.NoError(t, root.Execute(), errOut.String())
	return out.String()
}

func isolateEnv(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("WEEK_START", "")
	t.Setenv("UNDO_LIMIT", "")
	t.Setenv("BUDGET_ALERT_PERCENT", "")
}

func TestRunPersistsBetweenInvocations(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	out := runCLI(t, dir, "", "run", "spent", "12.50", "on", "lunch")
	require.Contains(t, out, "Added lunch for 12.50 USD")

	out = runCLI(t, dir, "", "list")
	require.Contains(t, out, "DESCRIPTION")
	require.Contains(t, out, "lunch")
	require.Contains(t, out, "$12.50")

	out = runCLI(t, dir, "", "run", "undo")
	require.Contains(t, out, "Undid last change")

	out = runCLI(t, dir, "", "list")
	require.Contains(t, out, "No expenses")
}

func TestRunJSON(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	out := runCLI(t, dir, "", "--json", "run", "add coffee for €4")
	var got services.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, core.KindAdd, got.Kind)
	require.True(t, got.Changed)
	require.NotNil(t, got.Expense)
	require.Equal(t, int64(400), got.Expense.AmountCents)
	require.Equal(t, core.EUR, got.Expense.Currency)
}

func TestRunWithoutSentenceShowsHelp(t *testing.T) {
	isolateEnv(t)
	out := runCLI(t, t.TempDir(), "", "run")
	require.Contains(t, out, services.HelpText)
}

func TestREPL(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	input := "spent 20 on lunch\nspent 5 on coffee\n\nhow much did I spend\nquit\nspent 99 on never\n"
	out := runCLI(t, dir, input, "repl")
	require.Contains(t, out, "Added lunch for 20.00 USD")
	require.Contains(t, out, "Added coffee for 5.00 USD")
	require.Contains(t, out, "Total: $25.00")
	require.NotContains(t, out, "never")
	require.NotContains(t, out, "> ")

	out = runCLI(t, dir, "", "--json", "list")
	var expenses []core.Expense
	require.NoError(t, json.Unmarshal([]byte(out), &expenses))
	require.Len(t, expenses, 2)
	require.Equal(t, "coffee", expenses[0].Description)
}

func TestREPLStopsAtEndOfInput(t *testing.T) {
	isolateEnv(t)
	out := runCLI(t, t.TempDir(), "undo", "repl")
	require.Contains(t, out, "Nothing to undo")
}

func TestSummary(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	runCLI(t, dir, "", "run", "set budget 100 for overall")
	runCLI(t, dir, "", "run", "spent 40 on groceries")

	out := runCLI(t, dir, "", "summary")
	require.Contains(t, out, "This month")
	require.Contains(t, out, "$40.00")
	require.Contains(t, out, "Budget left")
	require.Contains(t, out, "$60.00")
	require.Contains(t, out, "overall")
	require.Contains(t, out, "40%")

	out = runCLI(t, dir, "", "--json", "summary")
	var sum core.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Equal(t, int64(4000), sum.AllTimeCents)
	require.NotNil(t, sum.OverallLeft)
	require.Equal(t, int64(6000), *sum.OverallLeft)
}

func TestInvalidBackendFlag(t *testing.T) {
	isolateEnv(t)
	root, s := newRootCmd()
	defer s.close()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--backend", "postgres", "summary"})
	require.Error(t, root.Execute())
}

func TestHelpDoesNotOpenBackend(t *testing.T) {
	isolateEnv(t)
	root, s := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"help", "run"})
	require.NoError(t, root.Execute())
	require.Nil(t, s.svc)
	require.Contains(t, out.String(), "Interpret and apply one sentence")
}
