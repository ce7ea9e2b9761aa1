package cli

import (
	"github.com/spf13/cobra"
)

func newTilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiles",
		Short: "Show the letter table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Tiles
			if err := client.Get(apiPath("tiles"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show the premium cell layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Layout
			if err := client.Get(apiPath("board", "layout"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word <word>",
		Short: "Check a word against the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WordResult
			if err := client.Get(apiPath("dictionary", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
