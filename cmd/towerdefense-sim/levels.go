package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"towerdefense-sim/internal/config"
)

var (
	levelsConfigPath string
	levelsSchemaPath string
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Validate the level file and list its levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(levelsConfigPath, levelsSchemaPath)
		if err != nil {
			return err
		}
		return printLevels(cmd.OutOrStdout(), c)
	},
}

func printLevels(out io.Writer, c *config.Campaign) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tENEMY\tVICTORY\tWAVES\tENEMIES\tMONEY\tPATH")
	for _, l := range c.Levels {
		count := 0
		for _, w := range l.Waves {
			count += w.Count
		}
		path := fmt.Sprintf("%d turns", l.Path.Turns)
		if len(l.Path.Points) > 0 {
			path = fmt.Sprintf("%d points", len(l.Path.Points))
		}
		money := c.Player.StartMoney + (l.Number-1)*c.Player.MoneyPerLevel
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n", l.Number, l.Enemy, l.VictoryScore, len(l.Waves), count, money, path)
	}
	return tw.Flush()
}

func init() {
	levelsCmd.Flags().StringVar(&levelsConfigPath, "config", "config/levels.yaml", "Path to the level configuration YAML")
	levelsCmd.Flags().StringVar(&levelsSchemaPath, "schema", "schemas/levels.cue", "Path to CUE schema file")
}
