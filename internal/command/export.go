package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/db"
	"github.com/adamavenir/imsgexport/internal/export"
	"github.com/adamavenir/imsgexport/internal/pipeline"
)

type exportResult struct {
	ExportID     string         `json:"export_id"`
	Output       string         `json:"output"`
	Threads      int            `json:"threads"`
	Messages     int            `json:"messages"`
	HTML         bool           `json:"html"`
	Attachments  attachmentsOut `json:"attachments"`
	Unattributed int            `json:"unattributed"`
	Renames      int            `json:"renames"`
	SkippedJoins int            `json:"skipped_joins"`
}

type attachmentsOut struct {
	Copied int   `json:"copied"`
	Failed int   `json:"failed"`
	Bytes  int64 `json:"bytes"`
}

func runExport(cmd *cobra.Command, a *app) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	if input == "" && output == "" {
		_ = cmd.Help()
	}
	if input == "" || output == "" {
		return writeCommandError(cmd, fmt.Errorf("please supply both --input and --output"))
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	force, _ := cmd.Flags().GetBool("force")
	withHTML, _ := cmd.Flags().GetBool("html")

	opts, err := runOptions(cmd, a.cfg)
	if err != nil {
		return writeCommandError(cmd, err)
	}

	src, err := db.OpenSource(input)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	defer src.Close()

	layout := export.NewLayout(output, a.cfg)
	exists, err := layout.Detect()
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if exists && !force {
		confirmed, err := confirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), output, a.cfg.ConfirmKeyword)
		if err != nil {
			return writeCommandError(cmd, err)
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Okay, stopping. Nothing has been changed.")
			return ErrDeclined
		}
	}

	opts.AttachmentsDir = layout.Attachments()
	res, err := pipeline.Run(cmd.Context(), src, opts)
	if err != nil {
		return writeCommandError(cmd, err)
	}

	index, err := export.NewWriter(layout, src.Path()).WriteThreads(res.Threads)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if withHTML {
		if err := export.WriteHTML(layout, res.Threads, index, a.cfg.SeparatorSeconds); err != nil {
			return writeCommandError(cmd, err)
		}
	}
	log.Info().Str("export_id", index.ExportID).Str("output", output).Msg("export complete")

	stats := res.Stats
	if jsonMode {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(exportResult{
			ExportID: index.ExportID,
			Output:   output,
			Threads:  stats.Threads,
			Messages: stats.ExportedMessages,
			HTML:     withHTML,
			Attachments: attachmentsOut{
				Copied: stats.Copied,
				Failed: stats.CopyFailures,
				Bytes:  stats.CopiedBytes,
			},
			Unattributed: stats.Unattributed,
			Renames:      stats.Renames,
			SkippedJoins: stats.SkippedJoins,
		})
	}

	writeSummary(cmd.OutOrStdout(), output, stats, a.cfg.Unattributed)
	return nil
}

// runOptions merges flags into the configured pipeline options.
func runOptions(cmd *cobra.Command, cfg *core.Config) (pipeline.Options, error) {
	opts := pipeline.OptionsFromConfig(cfg)
	if cmd.Flags().Lookup("sort") != nil {
		if sorted, _ := cmd.Flags().GetBool("sort"); sorted {
			opts.SortChronological = true
		}
	}
	if cmd.Flags().Lookup("participant") != nil {
		patterns, _ := cmd.Flags().GetStringArray("participant")
		filter, err := pipeline.NewParticipantFilter(patterns)
		if err != nil {
			return opts, err
		}
		opts.Filter = filter
	}
	return opts, nil
}

// IsDeclined reports whether err is a declined confirmation.
func IsDeclined(err error) bool {
	return errors.Is(err, ErrDeclined)
}
