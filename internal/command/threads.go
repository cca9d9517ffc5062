package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adamavenir/imsgexport/internal/db"
	"github.com/adamavenir/imsgexport/internal/pipeline"
)

type threadSummary struct {
	Identifier   string   `json:"identifier"`
	Participants []string `json:"participants"`
	Chats        []string `json:"chats"`
	MessageCount int      `json:"message_count"`
}

// NewThreadsCmd creates the threads list command.
func NewThreadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads --input <chat.db>",
		Short: "List unified conversations without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			if input == "" {
				return writeCommandError(cmd, fmt.Errorf("please supply --input"))
			}
			jsonMode, _ := cmd.Flags().GetBool("json")

			opts, err := runOptions(cmd, a.cfg)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			src, err := db.OpenSource(input)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer src.Close()

			res, err := pipeline.Run(cmd.Context(), src, opts)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			summaries := make([]threadSummary, 0, len(res.Threads))
			for _, t := range res.Threads {
				summaries = append(summaries, threadSummary{
					Identifier:   t.ID,
					Participants: append([]string{}, t.Participants...),
					Chats:        t.ChatGUIDs,
					MessageCount: len(t.Messages),
				})
			}

			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(summaries)
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No conversations found.")
				return nil
			}
			fmt.Fprintf(out, "Conversations (%s):\n", humanize.Comma(int64(len(summaries))))
			for _, s := range summaries {
				fmt.Fprintf(out, "  %s  %s %s\n", s.Identifier,
					humanize.Comma(int64(s.MessageCount)), plural(s.MessageCount, "message", "messages"))
				if len(s.Participants) > 0 {
					fmt.Fprintln(out, metaStyle.Render("    "+strings.Join(s.Participants, ", ")))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "path to the message database (chat.db)")
	cmd.Flags().StringArray("participant", nil, "only list conversations with a matching participant (glob, repeatable)")

	return cmd
}
