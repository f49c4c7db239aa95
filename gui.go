package main

import (
	"github.com/spf13/cobra"

	"github.com/fmuoria/talent-screening-agent/internal/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Run the desktop dashboard",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		screeningAgent, cleanup, err := newAgent(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		gui.NewApp(cfg, screeningAgent).Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
