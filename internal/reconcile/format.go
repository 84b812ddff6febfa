package reconcile

import "strings"

// DecisionLabel returns the display label for a historical decision text.
// The presentation layer owns any icons or styling on top of this.
func DecisionLabel(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Pendente"
	}
	return strings.TrimSpace(text)
}

// IssueTypeLabel expands the issue-type codes used in the spreadsheets.
func IssueTypeLabel(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case IssuePrereqBreak:
		return "Quebra de Requisito"
	case IssueScheduleConflict:
		return "Conflito de Horário"
	case "":
		return "Não especificado"
	default:
		return strings.TrimSpace(code)
	}
}
