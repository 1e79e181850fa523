package cmd

import (
	"fmt"

	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/ui"

	"github.com/spf13/cobra"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the home page sections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		var order []string
		sections := map[string]providers.HomeSection{}

		err = s.src.GetHomePageSections(cmd.Context(), func(sec providers.HomeSection) {
			if _, seen := sections[sec.ID]; !seen {
				order = append(order, sec.ID)
				s.log.Debugf("section %s announced", sec.ID)
			}
			sections[sec.ID] = sec
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range order {
			sec := sections[id]
			if len(sec.Items) == 0 {
				continue
			}

			fmt.Fprintln(out, ui.Title(sec.Title))
			printTiles(out, sec.Items, nil)
			if sec.ViewMore {
				fmt.Fprintf(out, "More: nelo more %s\n", sec.ID)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(homeCmd)
}
