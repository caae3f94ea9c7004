package inspect

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newSummaryCmd creates the summary command.
func newSummaryCmd(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>",
		Short: "Summarize a saved profile document",
		Long: `Summarize a saved profile document.

Prints collection sizes and a histogram of event summary tags.

Examples:
  profiledb summary profile.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(logger, args[0])
			if err != nil {
				return err
			}

			cmd.Printf("bytecodes:    %d\n", len(doc.Bytecodes))
			cmd.Printf("compilations: %d\n", len(doc.Compilations))
			cmd.Printf("events:       %d\n", len(doc.Events))

			if len(doc.Events) == 0 {
				return nil
			}

			histogram := make(map[string]int)
			withCompilation := 0
			for _, ev := range doc.Events {
				histogram[ev.Summary]++
				if ev.Compilation != nil {
					withCompilation++
				}
			}

			tags := make([]string, 0, len(histogram))
			for tag := range histogram {
				tags = append(tags, tag)
			}
			sort.Strings(tags)

			cmd.Println("\nevents by summary:")
			for _, tag := range tags {
				cmd.Printf("  %-20s %d\n", tag, histogram[tag])
			}
			cmd.Printf("\nevents with a compilation reference: %d\n", withCompilation)

			first := doc.Events[0].Time
			last := doc.Events[len(doc.Events)-1].Time
			cmd.Printf("event time span: %.3fs\n", last-first)

			return nil
		},
	}
}
