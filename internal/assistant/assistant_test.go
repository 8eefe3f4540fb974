package assistant

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
	"finance-sync/internal/testutil"
)

type fakeSource struct {
	transactions []domain.DailyTransaction
	err          error
}

func (f *fakeSource) RecentTransactions(ctx context.Context) ([]domain.DailyTransaction, error) {
	return f.transactions, f.err
}

type fakeGenerator struct {
	system   string
	question string
	reply    string
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, system, question string) (string, error) {
	f.system, f.question = system, question
	return f.reply, f.err
}

var sample = []domain.DailyTransaction{
	{AccountName: "Checking", Amount: decimal.RequireFromString("-4.5"), Payee: "Cafe", Description: "COFFEE", TransactedAt: time.Now()},
	{AccountName: "Savings", Amount: decimal.RequireFromString("1.25"), Payee: "", Description: "Interest", TransactedAt: time.Now()},
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(sample, []string{"Save more", "Eat out less"})

	expected := "You are a finance agent helping me achieve my financial goals.\n\n" +
		"My Financial Goals:\n" +
		"- Save more\n" +
		"- Eat out less\n\n" +
		"Today's Transactions (2 total):\n" +
		"- $-4.50 at Cafe (COFFEE)\n" +
		"- $1.25 at  (Interest)\n\n" +
		"Help me understand my spending and make decisions to achieve my goals."
	assert.Equal(t, expected, prompt)
}

func TestBuildSystemPrompt_NoTransactions(t *testing.T) {
	prompt := BuildSystemPrompt(nil, DefaultGoals)
	assert.Contains(t, prompt, "Today's Transactions (0 total):\n\n")
	assert.Contains(t, prompt, "- Track all subscriptions\n")
}

func TestLoadGoals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("goals:\n  - Spend less than $40/day\n  - \"  \"\n  - Cancel unused subscriptions\n"), 0o600))

	goals, err := LoadGoals(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Spend less than $40/day", "Cancel unused subscriptions"}, goals)
}

func TestLoadGoals_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("goals: []\n"), 0o600))
	malformed := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("goals: [unterminated\n"), 0o600))

	for _, path := range []string{empty, malformed, filepath.Join(dir, "missing.yaml")} {
		_, err := LoadGoals(path)
		assert.True(t, stderrors.Is(err, errors.ErrConfig), path)
	}
}

func TestLoadGoals_Default(t *testing.T) {
	goals, err := LoadGoals("")
	require.NoError(t, err)
	assert.Equal(t, DefaultGoals, goals)
}

func TestAssistant_Ask(t *testing.T) {
	generator := &fakeGenerator{reply: "You spent $4.50."}
	a := New(&fakeSource{transactions: sample}, generator, []string{"Save more"}, testutil.DiscardLogger())

	answer, err := a.Ask(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "You spent $4.50.", answer)
	assert.Equal(t, DefaultQuestion, generator.question)
	assert.Contains(t, generator.system, "- $-4.50 at Cafe (COFFEE)")
}

func TestAssistant_AskPropagatesErrors(t *testing.T) {
	sourceErr := errors.NewAppError(errors.PersistenceError, "failed to list transactions")
	a := New(&fakeSource{err: sourceErr}, &fakeGenerator{}, nil, testutil.DiscardLogger())
	_, err := a.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, errors.ErrPersistence)

	genErr := errors.NewAppError(errors.UpstreamError, "empty response from model")
	a = New(&fakeSource{}, &fakeGenerator{err: genErr}, nil, testutil.DiscardLogger())
	_, err = a.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, errors.ErrUpstream)
}
