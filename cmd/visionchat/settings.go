package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xyzj/toolbox/json"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or replace the settings object",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the settings object",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		s, err := e.app.GetSettings()
		if err != nil {
			return err
		}
		out, err := json.MarshalToString(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <json-object>",
	Short: "Replace the settings object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		if !e.app.SetSettings([]byte(args[0])) {
			return errors.New("settings were not saved, the value must be a JSON object")
		}
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
