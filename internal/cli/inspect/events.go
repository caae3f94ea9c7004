package inspect

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newEventsCmd creates the events command.
func newEventsCmd(logger zerolog.Logger) *cobra.Command {
	var (
		unitIndex  int
		summaryTag string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "events <file>",
		Short: "List events from a saved profile document",
		Long: `List events from a saved profile document in append order.

Each line shows the event timestamp, the referenced unit, the summary tag,
and the detail string. A trailing asterisk on the unit name marks events
that carry a compilation reference.

Examples:
  profiledb events profile.json
  profiledb events profile.json --summary optimized
  profiledb events profile.json --unit 0 --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(logger, args[0])
			if err != nil {
				return err
			}

			printed := 0
			for _, ev := range doc.Events {
				if unitIndex >= 0 && ev.Bytecodes != unitIndex {
					continue
				}
				if summaryTag != "" && ev.Summary != summaryTag {
					continue
				}
				if limit > 0 && printed >= limit {
					break
				}

				name := unitName(doc, ev.Bytecodes)
				if ev.Compilation != nil {
					name += "*"
				}
				stamp := time.Unix(0, int64(ev.Time*float64(time.Second))).UTC()
				cmd.Printf("%s  %-24s %-16s %s\n",
					stamp.Format("15:04:05.000"), name, ev.Summary, ev.Detail)
				printed++
			}

			cmd.Printf("%d event(s)\n", printed)
			return nil
		},
	}

	cmd.Flags().IntVar(&unitIndex, "unit", -1, "only events for this bytecodes index")
	cmd.Flags().StringVar(&summaryTag, "summary", "", "only events with this summary tag")
	addLimitFlag(cmd.Flags(), &limit)

	return cmd
}
