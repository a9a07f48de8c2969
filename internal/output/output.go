// Package output provides styled terminal output helpers (success, error,
// warning, trip formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gigtrack/gig/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	profitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Money formats an amount in the user's currency.
func Money(amount float64) string {
	return fmt.Sprintf("€%.2f", amount)
}

// NetProfit formats a net profit amount, colored by sign.
func NetProfit(amount float64) string {
	if amount < 0 {
		return lossStyle.Render(Money(amount))
	}
	return profitStyle.Render(Money(amount))
}

// FormatTripShort formats a trip record on one line.
func FormatTripShort(rec *models.TripRecord, settings models.Settings) string {
	var parts []string
	parts = append(parts, titleStyle.Render(rec.Date))
	parts = append(parts, fmt.Sprintf("%.1f km", rec.KmDriven))
	parts = append(parts, fmt.Sprintf("%.1f h", rec.HoursWorked))
	parts = append(parts, Money(rec.TotalEarnings))
	if rec.AdditionalCosts > 0 {
		parts = append(parts, subtleStyle.Render("-"+Money(rec.AdditionalCosts)))
	}
	parts = append(parts, "net "+NetProfit(rec.NetProfit(settings)))
	parts = append(parts, subtleStyle.Render(ShortID(rec.ID)))
	return strings.Join(parts, "  ")
}

// FormatTripLong formats a trip record in detail.
func FormatTripLong(rec *models.TripRecord, settings models.Settings) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", rec.Date, rec.ID)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Distance: %.1f km\n", rec.KmDriven))
	sb.WriteString(fmt.Sprintf("Hours:    %.1f h\n", rec.HoursWorked))
	sb.WriteString(fmt.Sprintf("Earnings: %s\n", Money(rec.TotalEarnings)))
	sb.WriteString(fmt.Sprintf("Costs:    %s (+ %.1f km x %s/km)\n",
		Money(rec.AdditionalCosts), rec.KmDriven, Money(settings.CostPerKm)))
	sb.WriteString(fmt.Sprintf("Net:      %s\n", NetProfit(rec.NetProfit(settings))))
	return sb.String()
}

// FormatPendingOp formats a queued operation for sync-status display.
func FormatPendingOp(op *models.PendingOperation) string {
	return fmt.Sprintf("%s  %-6s  %s  %s",
		subtleStyle.Render(op.CreatedAt.Local().Format("2006-01-02 15:04")),
		op.Kind, ShortID(op.RecordID), subtleStyle.Render(op.OperationID))
}

// ShortID shortens a record ID to 8 characters for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}
