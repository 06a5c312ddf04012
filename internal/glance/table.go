package glance

import (
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/dmarenov/ghglance/internal/metadata"
)

const (
	columnPaddingConstant = "  "
)

var tableHeaderColumns = []string{"ACTIVITY", "ISSUES", "PR", "STAR", "REL", "RELEASED", "REPO"}

var tableColumnAlignments = []int{
	tablewriter.ALIGN_LEFT,
	tablewriter.ALIGN_RIGHT,
	tablewriter.ALIGN_RIGHT,
	tablewriter.ALIGN_RIGHT,
	tablewriter.ALIGN_LEFT,
	tablewriter.ALIGN_LEFT,
	tablewriter.ALIGN_LEFT,
}

// ShouldColorize reports whether table output to the provided file should use
// ANSI colors. Colors require an interactive terminal and no explicit opt-out.
func ShouldColorize(output *os.File, colorDisabled bool) bool {
	if colorDisabled || output == nil {
		return false
	}
	return isatty.IsTerminal(output.Fd()) || isatty.IsCygwinTerminal(output.Fd())
}

// TableRenderer renders repository summaries as an aligned, borderless table.
type TableRenderer struct {
	writer       io.Writer
	colorEnabled bool
}

// NewTableRenderer constructs a renderer writing to the provided sink.
func NewTableRenderer(writer io.Writer, colorEnabled bool) *TableRenderer {
	return &TableRenderer{writer: writer, colorEnabled: colorEnabled}
}

// Render writes one row per repository summary beneath the header row.
func (renderer *TableRenderer) Render(results []metadata.RepoResult) {
	table := tablewriter.NewWriter(renderer.writer)
	table.SetHeader(tableHeaderColumns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment(tableColumnAlignments)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding(columnPaddingConstant)
	table.SetNoWhiteSpace(true)

	if renderer.colorEnabled {
		headerColors := make([]tablewriter.Colors, len(tableHeaderColumns))
		for columnIndex := range headerColors {
			headerColors[columnIndex] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgWhiteColor}
		}
		table.SetHeaderColor(headerColors...)
	}

	for _, result := range results {
		row := []string{
			result.Info.Activity,
			strconv.Itoa(result.Info.OpenIssues),
			strconv.Itoa(result.Info.OpenPullRequests),
			strconv.Itoa(result.Info.Stars),
			result.Info.ReleaseTag,
			result.Info.ReleaseDate,
			result.Repository,
		}
		if renderer.colorEnabled {
			table.Rich(row, rowColors(result.Info))
			continue
		}
		table.Append(row)
	}

	table.Render()
}

// rowColors mirrors the column palette of the terminal output: counts light
// up when non-zero, release cells stay dim while the placeholder shows.
func rowColors(info metadata.RepoInfo) []tablewriter.Colors {
	quietColor := tablewriter.Colors{tablewriter.FgMagentaColor}

	issueColors := quietColor
	if info.OpenIssues > 0 {
		issueColors = tablewriter.Colors{tablewriter.FgRedColor}
	}
	pullRequestColors := quietColor
	if info.OpenPullRequests > 0 {
		pullRequestColors = tablewriter.Colors{tablewriter.FgHiRedColor}
	}
	starColors := quietColor
	if info.Stars > 0 {
		starColors = tablewriter.Colors{tablewriter.FgYellowColor}
	}
	releaseTagColors := quietColor
	if info.ReleaseTag != metadata.UnknownValuePlaceholder {
		releaseTagColors = tablewriter.Colors{tablewriter.FgWhiteColor}
	}
	releaseDateColors := quietColor
	if info.ReleaseDate != metadata.UnknownValuePlaceholder {
		releaseDateColors = tablewriter.Colors{tablewriter.FgWhiteColor}
	}

	return []tablewriter.Colors{
		quietColor,
		issueColors,
		pullRequestColors,
		starColors,
		releaseTagColors,
		releaseDateColors,
		{tablewriter.FgCyanColor},
	}
}
