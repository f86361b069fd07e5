package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/lexclock/pkg/deadline"
)

// renderer is implemented by every command result.
type renderer interface {
	// Text writes the human-readable form.
	Text(w io.Writer)
	// Table returns headers and rows for --output table.
	Table() ([]string, [][]string)
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data renderer) error {
	format := "text"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "table":
		headers, rows := data.Table()
		table := tablewriter.NewWriter(out)
		table.Header(headers)
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		data.Text(out)
		return nil
	}
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// colorizeUrgency colours an urgency level: red for closed and critical,
// yellow for urgent, cyan for warning, green otherwise.
func colorizeUrgency(u deadline.Urgency) string {
	switch u {
	case deadline.Closed, deadline.Critical:
		return color.RedString(u.String())
	case deadline.Urgent:
		return color.YellowString(u.String())
	case deadline.Warning:
		return color.CyanString(u.String())
	default:
		return color.GreenString(u.String())
	}
}

func describeStatus(s deadline.Status) string {
	switch {
	case s.IsClosed:
		return fmt.Sprintf("%s, %d days ago", colorizeUrgency(s.Urgency), -s.DaysRemaining)
	case s.DaysRemaining == 0:
		return fmt.Sprintf("%s, due today", colorizeUrgency(s.Urgency))
	default:
		return fmt.Sprintf("%s, %d days remaining", colorizeUrgency(s.Urgency), s.DaysRemaining)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
