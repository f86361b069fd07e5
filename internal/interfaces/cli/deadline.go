package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/pkg/deadline"
)

type computeResult struct {
	*docket.Computation
}

func (r computeResult) Text(w io.Writer) {
	c := r.Computation
	rule := fmt.Sprintf("%s %d", c.Kind, c.Magnitude)
	if c.Rule != "" {
		rule = fmt.Sprintf("%s (%s)", c.Rule, rule)
	}
	fmt.Fprintf(w, "Rule:      %s\n", rule)
	fmt.Fprintf(w, "Trigger:   %s\n", c.TriggerDate)
	fmt.Fprintf(w, "Deadline:  %s (%s)\n", c.Deadline, c.Deadline.Weekday())
	fmt.Fprintf(w, "Status:    %s\n", describeStatus(c.Status))
	if c.Grace != nil {
		fmt.Fprintf(w, "Grace:     %s\n", c.Grace.DisplayText)
	}
}

func (r computeResult) Table() ([]string, [][]string) {
	c := r.Computation
	grace := ""
	if c.Grace != nil {
		grace = c.Grace.GraceEnd.String()
	}
	return []string{"Rule", "Kind", "N", "Trigger", "Deadline", "Days", "Urgency", "Grace End"},
		[][]string{{
			c.Rule, c.Kind.String(), strconv.Itoa(c.Magnitude), c.TriggerDate.String(), c.Deadline.String(),
			strconv.Itoa(c.Status.DaysRemaining), colorizeUrgency(c.Status.Urgency), grace,
		}}
}

type statusResult struct {
	*docket.StatusReport
}

func (r statusResult) Text(w io.Writer) {
	fmt.Fprintf(w, "Deadline:  %s\n", r.Deadline)
	fmt.Fprintf(w, "Today:     %s\n", r.Today)
	fmt.Fprintf(w, "Status:    %s\n", describeStatus(r.Status))
}

func (r statusResult) Table() ([]string, [][]string) {
	return []string{"Deadline", "Today", "Days", "Urgency", "Critical"},
		[][]string{{
			r.Deadline.String(), r.Today.String(), strconv.Itoa(r.Status.DaysRemaining),
			colorizeUrgency(r.Status.Urgency), yesNo(r.Status.IsCritical),
		}}
}

type rulesResult struct {
	Rules []deadline.Rule `json:"rules"`
}

func (r rulesResult) Text(w io.Writer) {
	for _, rule := range r.Rules {
		fmt.Fprintf(w, "%-16s %s\n", rule.Name, rule.Description)
	}
}

func (r rulesResult) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r.Rules))
	for _, rule := range r.Rules {
		rows = append(rows, []string{rule.Name, rule.Kind.String(), strconv.Itoa(rule.Magnitude), rule.Description})
	}
	return []string{"Name", "Kind", "N", "Description"}, rows
}

// graceFlags registers --grace and --with-grace on cmd.
func graceFlags(cmd *cobra.Command, graceDays *int, withGrace *bool) {
	cmd.Flags().IntVar(graceDays, "grace", 0, "add a grace period of N calendar days")
	cmd.Flags().BoolVar(withGrace, "with-grace", false, "add a grace period of the configured default length")
}

func runCompute(cmd *cobra.Command, req *docket.ComputeRequest, graceDays int, withGrace bool) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("grace") {
		req.GraceDays = &graceDays
	}
	req.WithGrace = withGrace

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	out, err := cliCtx.Platform.Service.Compute(ctx, req)
	if err != nil {
		return err
	}
	return PrintResult(cmd, computeResult{out})
}

func newComputeCmd() *cobra.Command {
	var (
		rule      string
		from      string
		graceDays int
		withGrace bool
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a deadline by named rule",
		Long:  "Compute the deadline a named rule sets from a trigger date. Run 'lexclock rules' to list the rules.",
		Example: `  lexclock compute --rule answer --from 2024-12-20
  lexclock compute --rule answer --from 2024-12-20 --grace 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, &docket.ComputeRequest{Rule: rule, TriggerDate: from}, graceDays, withGrace)
		},
	}

	cmd.Flags().StringVar(&rule, "rule", "", "rule name [REQUIRED]")
	cmd.Flags().StringVar(&from, "from", "", "trigger date, YYYY-MM-DD [REQUIRED]")
	graceFlags(cmd, &graceDays, &withGrace)
	_ = cmd.MarkFlagRequired("rule")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newAddCmd() *cobra.Command {
	var (
		kind      string
		n         int
		from      string
		graceDays int
		withGrace bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add calendar days, business days or months to a date",
		Example: `  lexclock add --kind calendar-days --n 30 --from 2025-01-15
  lexclock add --kind business-days --n 3 --from 2025-01-17
  lexclock add --kind months --n 6 --from 2025-01-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, &docket.ComputeRequest{Kind: kind, Magnitude: &n, TriggerDate: from}, graceDays, withGrace)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "calendar-days, business-days or months [REQUIRED]")
	cmd.Flags().IntVar(&n, "n", 0, "number of days or months [REQUIRED]")
	cmd.Flags().StringVar(&from, "from", "", "start date, YYYY-MM-DD [REQUIRED]")
	graceFlags(cmd, &graceDays, &withGrace)
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("n")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show how many days remain until a deadline",
		Example: "  lexclock status --deadline 2025-02-14",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			report, err := cliCtx.Platform.Service.Status(cmd.Context(), date)
			if err != nil {
				return err
			}
			return PrintResult(cmd, statusResult{report})
		},
	}

	cmd.Flags().StringVar(&date, "deadline", "", "deadline date, YYYY-MM-DD [REQUIRED]")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the named deadline rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, rulesResult{Rules: cliCtx.Platform.Service.Rules()})
		},
	}
}
