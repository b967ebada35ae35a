package processor

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
)

// RenderSummary draws one table row per processed file
func RenderSummary(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "File", "Status", "Language", "Audio (min)", "Took", "Output"})

	for i, r := range s.Results {
		status := "ok"
		output := r.OutputPath
		if !r.OK() {
			status = "failed"
			output = firstLine(logger.FormatError(r.Err))
		}
		tw.AppendRow(table.Row{
			i + 1,
			r.Entry.Name,
			status,
			strings.ToUpper(r.Language),
			fmt.Sprintf("%.2f", r.Duration/60),
			fmt.Sprintf("%.1fs", r.Elapsed.Seconds()),
			output,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	return tw.Render()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
