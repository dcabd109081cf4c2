package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xyzj/toolbox/json"

	"github.com/xyzj/visionchat/schema"
)

var analyzePrompt string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Ask the vision model about an image and record the exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.app.SaveChatMessage(schema.NewMessage(schema.RoleUser, analyzePrompt)) {
			e.logg.Warn().Msg("question was not recorded in the history")
		}
		res, err := e.app.AnalyzeImage(cmd.Context(), base64.StdEncoding.EncodeToString(b), imageMimeType(args[0], b), analyzePrompt)
		if err != nil {
			return err
		}
		if !e.app.SaveChatMessage(schema.NewMessage(schema.RoleAssistant, res.Text)) {
			e.logg.Warn().Msg("answer was not recorded in the history")
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the AI service configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		s, err := json.MarshalToString(e.app.GetAiStatus())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

// imageMimeType prefers the file extension and falls back to sniffing.
func imageMimeType(name string, b []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	return http.DetectContentType(b)
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzePrompt, "prompt", "p", "", "Question about the image")
	analyzeCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if analyzePrompt == "" {
			return errors.New("--prompt is required")
		}
		return nil
	}
	rootCmd.AddCommand(analyzeCmd, statusCmd)
}
