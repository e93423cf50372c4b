package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/metcalfc/trustfall/internal/soundtrack"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func newSlidesCommand(ctx *commandContext) *cobra.Command {
	var storyFile string

	cmd := &cobra.Command{
		Use:   "slides",
		Short: "List the slides of the story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			story, err := loadStory(cfg, storyFile)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(story))
			for i, s := range story {
				rows = append(rows, []string{
					strconv.Itoa(s.ID),
					s.Background,
					soundtrack.TrackForSlide(i + 1),
					strconv.Itoa(len(s.Lines)),
					preview(s.Lines[0], 48),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Background", "Track", "Lines", "Opens with"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&storyFile, "story", "s", "", "Story file (Markdown, EPUB or YAML)")
	return cmd
}

func newTracksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List the soundtrack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := make([]string, 0, len(soundtrack.Music))
			for name := range soundtrack.Music {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				t := soundtrack.Music[name]
				rows = append(rows, []string{
					name,
					t.Path,
					strconv.FormatBool(t.Loop),
					strconv.FormatFloat(t.Volume, 'f', 2, 64),
					t.FadeIn.String(),
					t.FadeOut.String(),
					slideRanges(name),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Track", "Path", "Loop", "Volume", "Fade in", "Fade out", "Slides"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

// slideRanges lists the slide ordinals playing track, collapsed into ranges.
func slideRanges(track string) string {
	var ordinals []int
	for n, name := range soundtrack.SlideTracks {
		if name == track {
			ordinals = append(ordinals, n)
		}
	}
	sort.Ints(ordinals)

	var parts []string
	for i := 0; i < len(ordinals); {
		j := i
		for j+1 < len(ordinals) && ordinals[j+1] == ordinals[j]+1 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(ordinals[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", ordinals[i], ordinals[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
