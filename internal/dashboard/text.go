package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText prints a view the way the dashboard lays it out
func WriteText(w io.Writer, v *View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n\n", v.Heading)
	fmt.Fprintf(tw, "%s:\n", v.Title)
	for _, s := range []Stat{v.Summary.Minimum, v.Summary.Maximum, v.Summary.Average, v.Summary.Median} {
		fmt.Fprintf(tw, "  %s:\t%s\n", s.Label, s.Display)
	}
	fmt.Fprintf(tw, "  Players:\t%d\n\n", v.Summary.Count)

	fmt.Fprintf(tw, "%s\n", v.Plot.Title)
	fmt.Fprintf(tw, "  Round\tN\tMin\tQ1\tMedian\tQ3\tMax\n")
	for _, b := range v.Plot.Boxes {
		fmt.Fprintf(tw, "  %d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n", b.Round, b.Count, b.Min, b.Q1, b.Median, b.Q3, b.Max)
	}
	if v.Plot.Overlay != nil {
		fmt.Fprintf(tw, "  Candidate:\tround %d\t%.2f\n", v.Plot.Overlay.Round, v.Plot.Overlay.Value)
	}
	fmt.Fprintln(tw)

	if v.Percentile != nil {
		fmt.Fprintf(tw, "%s\n\n", v.Percentile.Message)
	}

	fmt.Fprintf(tw, "%s\n%s\n", v.Recommendations.Heading, v.Recommendations.Message)
	for _, s := range v.Recommendations.Averages {
		fmt.Fprintf(tw, "  %s\t%s\n", s.Label, s.Display)
	}
	for _, p := range v.Recommendations.Players {
		fmt.Fprintf(tw, "    %s\t%d\tround %d\tpick %d\n", p.Name, p.Year, p.Round, p.Pick)
	}

	return tw.Flush()
}
