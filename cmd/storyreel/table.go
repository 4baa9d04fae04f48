package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"storyreel/internal/runstore"
)

// sceneStatusTable renders per-scene run records for the status command.
// Scene numbers are right aligned; Detail falls back to the clip path when
// the record carries no message.
func sceneStatusTable(records []runstore.SceneRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Scene", "Status", "Effect", "Detail", "Updated"})

	for _, rec := range records {
		detail := rec.Detail
		if detail == "" {
			detail = rec.Output
		}
		updated := ""
		if !rec.UpdatedAt.IsZero() {
			updated = rec.UpdatedAt.Local().Format(time.DateTime)
		}
		tw.AppendRow(table.Row{rec.SceneID, string(rec.Status), rec.Effect, detail, updated})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
