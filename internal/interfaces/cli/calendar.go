package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/pkg/errors"
)

type holidaysResult struct {
	*docket.HolidayList
}

func (r holidaysResult) Text(w io.Writer) {
	fmt.Fprintf(w, "Holidays %d (%s, %s)\n", r.Year, r.Jurisdiction, r.Observance)
	for _, h := range r.Holidays {
		fmt.Fprintf(w, "  %s  %-9s  %s\n", h.Date, h.Date.Weekday(), h.Name)
	}
	fmt.Fprintf(w, "Total: %d holiday(s)\n", len(r.Holidays))
}

func (r holidaysResult) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r.Holidays))
	for _, h := range r.Holidays {
		rows = append(rows, []string{h.Date.String(), h.Date.Weekday().String(), h.Name})
	}
	return []string{"Date", "Weekday", "Holiday"}, rows
}

type dayResult struct {
	*docket.DayInfo
}

func (r dayResult) Text(w io.Writer) {
	kind := "business day"
	switch {
	case r.IsHoliday:
		kind = "holiday: " + r.HolidayName
	case r.IsWeekend:
		kind = "weekend"
	}
	fmt.Fprintf(w, "%s (%s) is a %s\n", r.Date, r.Weekday, kind)
}

func (r dayResult) Table() ([]string, [][]string) {
	return []string{"Date", "Weekday", "Weekend", "Holiday", "Business Day"},
		[][]string{{r.Date.String(), r.Weekday, yesNo(r.IsWeekend), r.HolidayName, yesNo(r.IsBusinessDay)}}
}

type warmResult struct {
	From        int   `json:"from"`
	To          int   `json:"to"`
	Years       int   `json:"years"`
	Invalidated int64 `json:"invalidated,omitempty"`
}

func (r warmResult) Text(w io.Writer) {
	if r.Years == 0 {
		fmt.Fprintf(w, "Holiday warm-up for %d..%d is running elsewhere, skipped\n", r.From, r.To)
		return
	}
	if r.Invalidated > 0 {
		fmt.Fprintf(w, "Invalidated %d shared holiday set(s)\n", r.Invalidated)
	}
	fmt.Fprintf(w, "Warmed %d holiday year(s), %d..%d\n", r.Years, r.From, r.To)
}

func (r warmResult) Table() ([]string, [][]string) {
	return []string{"From", "To", "Years", "Invalidated"},
		[][]string{{strconv.Itoa(r.From), strconv.Itoa(r.To), strconv.Itoa(r.Years), strconv.FormatInt(r.Invalidated, 10)}}
}

func newHolidaysCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:     "holidays",
		Short:   "List the court holidays of a year",
		Example: "  lexclock holidays --year 2025",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc := cliCtx.Platform.Service
			if !cmd.Flags().Changed("year") {
				year = svc.Engine().Today().Year()
			}

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			list, err := svc.Holidays(ctx, year)
			if err != nil {
				return err
			}
			return PrintResult(cmd, holidaysResult{list})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default: current year)")
	return cmd
}

func newDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "day DATE",
		Short:   "Classify a date as business day, weekend or holiday",
		Example: "  lexclock day 2025-01-20",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			info, err := cliCtx.Platform.Service.Day(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, dayResult{info})
		},
	}
}

func newWarmCmd() *cobra.Command {
	var (
		from, to int
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Resolve holiday years into the shared redis store",
		Long: `Resolve a range of holiday years and publish them to the shared redis store, so
other replicas read them instead of resolving. Without redis the years are only
resolved locally.

--refresh first drops every shared set of the configured calendar, for when
stored sets must be rebuilt even though the holiday table is unchanged.`,
		Example: "  lexclock warm --from 2025 --to 2035\n  lexclock warm --from 2025 --to 2035 --refresh",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Platform.Holidays == nil {
				cliCtx.Logger.Warn("redis is disabled, warming the local memo only")
			}
			if from == 0 {
				return errors.InvalidParam("--from is required")
			}
			if to == 0 {
				to = from
			}

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			res := warmResult{From: from, To: to}
			if refresh {
				res.Years, res.Invalidated, err = cliCtx.Platform.Service.RefreshHolidays(ctx, from, to)
			} else {
				res.Years, err = cliCtx.Platform.Service.WarmHolidays(ctx, from, to)
			}
			if err != nil {
				return err
			}
			return PrintResult(cmd, res)
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "first year [REQUIRED]")
	cmd.Flags().IntVar(&to, "to", 0, "last year (default: --from)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop shared holiday sets before warming")
	return cmd
}
