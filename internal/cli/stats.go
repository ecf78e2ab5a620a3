package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicvoice/complaint-service/internal/repository"
	"github.com/civicvoice/complaint-service/internal/service"
)

// StatsCmd prints the city dashboard.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print city-wide complaint statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			stats := service.NewStatsService(repository.NewComplaintRepository(e.pg.PoolHandle()), nil)
			city, err := stats.City(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			renderCityStats(cmd.OutOrStdout(), city)
			return nil
		},
	}
}

func renderCityStats(w io.Writer, s *service.CityStats) {
	t := s.Totals
	fmt.Fprintf(w, "Complaints: %d  (today: %d filed, %d resolved)\n", t.Total, s.TodayFiled, s.TodayResolved)
	fmt.Fprintf(w, "  %s %d  %s %d  %s %d  %s %d  %s %d\n",
		color.New(color.FgYellow).Sprint("pending"), t.Pending,
		color.New(color.FgCyan).Sprint("in progress"), t.InProgress,
		color.New(color.FgGreen).Sprint("resolved"), t.Resolved,
		color.New(color.FgRed).Sprint("overdue"), t.Overdue,
		color.New(color.FgHiMagenta).Sprint("escalated"), t.Escalated,
	)
	fmt.Fprintf(w, "  resolution rate: %s\n", rateColor(s.ResolutionRate).Sprintf("%.1f%%", s.ResolutionRate))
	fmt.Fprintf(w, "  avg resolution:  %s\n", optional(t.AvgResolutionHours, "%.1fh"))
	fmt.Fprintf(w, "  avg rating:      %s\n", optional(t.AvgRating, "%.2f/5"))

	if len(t.ByDepartment) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPARTMENT\tTOTAL\tRESOLVED\tPENDING\tOVERDUE\tAVG PRIORITY")
	for _, d := range t.ByDepartment {
		overdue := fmt.Sprint(d.Overdue)
		if d.Overdue > 0 {
			overdue = color.New(color.FgRed).Sprint(d.Overdue)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%.1f\n", d.Department, d.Total, d.Resolved, d.Pending, overdue, d.AvgPriority)
	}
	_ = tw.Flush()
}

func rateColor(rate float64) *color.Color {
	switch {
	case rate >= 75:
		return color.New(color.FgGreen)
	case rate >= 40:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func optional(v *float64, format string) string {
	if v == nil {
		return color.New(color.FgHiBlack).Sprint("n/a")
	}
	return fmt.Sprintf(format, *v)
}
