package cmd

import (
	"fmt"
	"strconv"

	"github.com/nfrund/topictracker/internal/domain"
	"github.com/nfrund/topictracker/internal/topic"
	"github.com/spf13/cobra"
)

var (
	topicsFormat    string
	topicsStatus    string
	topicsSortBy    string
	topicsSortOrder string
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Inspect stored topics",
	Long: `Reads topics straight from the configured database.

Examples:
  # Completed topics by name
  topictracker topics list --status complete --sort-by name --sort-order asc

  # Completion statistics as JSON
  topictracker topics stats --format json`,
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(topicsFormat); err != nil {
			return err
		}
		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		topics, err := svc.List(cmd.Context(), domain.NewListOptions(topicsStatus, topicsSortBy, topicsSortOrder))
		if err != nil {
			return err
		}

		if topicsFormat == formatJSON {
			if topics == nil {
				topics = []*domain.Topic{}
			}
			return writeJSON(cmd.OutOrStdout(), topics)
		}
		rows := make([][]string, 0, len(topics))
		for _, t := range topics {
			completed := "-"
			if t.DateCompleted != nil {
				completed = t.DateCompleted.Format(domain.TimeLayout)
			}
			rows = append(rows, []string{t.ID, t.Name, string(t.Status), t.DateAdded.Format(domain.TimeLayout), completed})
		}
		return writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "STATUS", "ADDED", "COMPLETED"}, rows)
	},
}

var topicsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(topicsFormat); err != nil {
			return err
		}
		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return err
		}

		if topicsFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), stats)
		}
		return writeTable(cmd.OutOrStdout(),
			[]string{"TOTAL", "COMPLETED", "INCOMPLETE", "RATE"},
			[][]string{{
				strconv.FormatInt(stats.Total, 10),
				strconv.FormatInt(stats.Completed, 10),
				strconv.FormatInt(stats.Incomplete, 10),
				fmt.Sprintf("%d%%", stats.CompletionRate),
			}},
		)
	},
}

// openService builds a topic service over the configured store. Nothing is
// published, since no server is attached to the bus.
func openService(cmd *cobra.Command) (topic.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return topic.NewService(store, nil), func() { _ = store.Close(cmd.Context()) }, nil
}

func init() {
	topicsCmd.PersistentFlags().StringVarP(&topicsFormat, "format", "f", formatTable, "Output format (table, json)")
	topicsListCmd.Flags().StringVar(&topicsStatus, "status", "", "Filter by status (complete, incomplete)")
	topicsListCmd.Flags().StringVar(&topicsSortBy, "sort-by", string(domain.SortByDateAdded), "Sort field (date_added, date_completed, name, status)")
	topicsListCmd.Flags().StringVar(&topicsSortOrder, "sort-order", "desc", "Sort order (asc, desc)")

	topicsCmd.AddCommand(topicsListCmd, topicsStatsCmd)
	rootCmd.AddCommand(topicsCmd)
}
