package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/xyzj/toolbox/json"

	"github.com/xyzj/visionchat/schema"
)

var historyJSON bool

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or edit the chat history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored chat messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		msgs, err := e.app.GetChatHistory()
		if err != nil {
			return err
		}
		if historyJSON {
			s, err := json.MarshalToString(msgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		}
		printHistory(cmd.OutOrStdout(), msgs)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every chat message",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		if !e.app.ClearHistory() {
			return errors.New("clearing the history failed, see the log for details")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <message-id>",
	Short: "Remove the messages with the given id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		if !e.app.DeleteMessage(args[0]) {
			return fmt.Errorf("deleting message %s failed, see the log for details", args[0])
		}
		return nil
	},
}

func printHistory(w io.Writer, msgs []schema.ChatMessage) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages stored.")
		return
	}
	fmt.Fprintf(w, "%s\n\n", countStyle.Render(fmt.Sprintf("%d message(s)", len(msgs))))
	for _, m := range msgs {
		role := userStyle.Render("user")
		if m.Role == schema.RoleAssistant {
			role = assistantStyle.Render("assistant")
		}
		ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04:05")
		fmt.Fprintf(w, "%s %s %s\n", role, dateStyle.Render(ts), idStyle.Render(m.ID))
		fmt.Fprintf(w, "  %s\n\n", strings.ReplaceAll(m.Content, "\n", "\n  "))
	}
}

func init() {
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the history as JSON")
	historyCmd.AddCommand(historyListCmd, historyClearCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
