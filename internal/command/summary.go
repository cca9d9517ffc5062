package command

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/pipeline"
)

func writeSummary(w io.Writer, output string, stats pipeline.Stats, policy string) {
	fmt.Fprintf(w, "Exported %s %s in %s %s to %s\n",
		humanize.Comma(int64(stats.ExportedMessages)), plural(stats.ExportedMessages, "message", "messages"),
		humanize.Comma(int64(stats.Threads)), plural(stats.Threads, "conversation", "conversations"),
		output)
	if stats.Copied > 0 {
		fmt.Fprintf(w, "Copied %s %s (%s)\n",
			humanize.Comma(int64(stats.Copied)), plural(stats.Copied, "attachment", "attachments"),
			humanize.Bytes(uint64(stats.CopiedBytes)))
	}

	var notes []string
	if stats.Renames > 0 {
		notes = append(notes, fmt.Sprintf("%s rename %s dropped", humanize.Comma(int64(stats.Renames)), plural(stats.Renames, "event", "events")))
	}
	if stats.Placeholders > 0 {
		notes = append(notes, fmt.Sprintf("%s audio %s replaced with a placeholder", humanize.Comma(int64(stats.Placeholders)), plural(stats.Placeholders, "message", "messages")))
	}
	if stats.FilteredThreads > 0 {
		notes = append(notes, fmt.Sprintf("%s %s filtered out", humanize.Comma(int64(stats.FilteredThreads)), plural(stats.FilteredThreads, "conversation", "conversations")))
	}
	for _, note := range notes {
		fmt.Fprintln(w, metaStyle.Render("  "+note))
	}

	if stats.Unattributed > 0 && policy == core.UnattributedExclude {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Warning: %s %s without a known sender excluded",
			humanize.Comma(int64(stats.Unattributed)), plural(stats.Unattributed, "message", "messages"))))
	}
	if stats.CopyFailures > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Warning: %s %s could not be copied; original paths were recorded",
			humanize.Comma(int64(stats.CopyFailures)), plural(stats.CopyFailures, "attachment", "attachments"))))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
