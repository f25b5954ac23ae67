package main

import (
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderPendingTable lists pending tasks in claim order with a footer
// totalling their count and size.
func renderPendingTable(tasks []pendingTask) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Task", "Command", "Size", "Queued"})

	var total int64
	for i, task := range tasks {
		total += task.size
		tw.AppendRow(table.Row{
			i + 1,
			task.name,
			task.command,
			humanize.Bytes(uint64(task.size)),
			task.queued,
		})
	}
	tw.AppendFooter(table.Row{"", humanize.Comma(int64(len(tasks))) + " pending", "", humanize.Bytes(uint64(total)), ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 3, WidthMax: commandPreviewWidth},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight, AlignHeader: text.AlignRight},
	})
	return tw.Render()
}
