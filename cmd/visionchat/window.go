package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xyzj/visionchat"
	"github.com/xyzj/visionchat/window"
)

var displayWidth, displayHeight int

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the persisted window geometry",
	RunE: func(cmd *cobra.Command, args []string) error {
		var extra []visionchat.Opts
		if displayWidth > 0 && displayHeight > 0 {
			extra = append(extra, visionchat.WithDisplay(window.Display{
				WorkArea: window.Rect{Width: displayWidth, Height: displayHeight},
			}))
		}
		e, err := openEnv(extra...)
		if err != nil {
			return err
		}
		defer e.Close()
		ws, err := e.app.GetWindowState()
		if err != nil {
			return err
		}
		if ws == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No window state stored.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "x=%d y=%d width=%d height=%d maximized=%t\n",
			ws.X, ws.Y, ws.Width, ws.Height, ws.IsMaximized)
		return nil
	},
}

func init() {
	windowCmd.Flags().IntVar(&displayWidth, "display-width", 0, "Clamp to a work area of this width (overrides window.display)")
	windowCmd.Flags().IntVar(&displayHeight, "display-height", 0, "Clamp to a work area of this height (overrides window.display)")
	rootCmd.AddCommand(windowCmd)
}
