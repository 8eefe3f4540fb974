package assistant

import (
	"fmt"
	"strings"

	"finance-sync/internal/domain"
)

// BuildSystemPrompt renders the goals and the day's transactions into the
// instructions the model answers against.
func BuildSystemPrompt(transactions []domain.DailyTransaction, goals []string) string {
	var b strings.Builder

	b.WriteString("You are a finance agent helping me achieve my financial goals.\n\n")

	b.WriteString("My Financial Goals:\n")
	for _, g := range goals {
		fmt.Fprintf(&b, "- %s\n", g)
	}

	fmt.Fprintf(&b, "\nToday's Transactions (%d total):\n", len(transactions))
	for _, t := range transactions {
		fmt.Fprintf(&b, "- $%s at %s (%s)\n", t.Amount.StringFixed(2), t.Payee, t.Description)
	}

	b.WriteString("\nHelp me understand my spending and make decisions to achieve my goals.")
	return b.String()
}
