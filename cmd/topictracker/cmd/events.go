package cmd

import (
	"github.com/nfrund/topictracker/internal/topic"
	"github.com/spf13/cobra"
)

var eventsFormat string

type eventRow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the change events published on the bus",
	Long: `Lists every event the topic service publishes after a successful mutation.
The websocket gateway relays each of them to connected clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(eventsFormat); err != nil {
			return err
		}

		rows := make([]eventRow, 0, len(topic.Events()))
		for _, event := range topic.Events() {
			rows = append(rows, eventRow{Name: event.Name(), Description: event.Description()})
		}

		if eventsFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), rows)
		}
		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			table = append(table, []string{r.Name, r.Description})
		}
		return writeTable(cmd.OutOrStdout(), []string{"EVENT", "DESCRIPTION"}, table)
	},
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", formatTable, "Output format (table, json)")
	rootCmd.AddCommand(eventsCmd)
}
