package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/tourcompanion/internal/model"
)

func newPointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "Show the point total",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Points.Refresh(cmd.Context()); err != nil {
				return err
			}

			output(cmd).Print(pointsView(app.Points.State()))
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat history commands",
	}

	cmd.AddCommand(newChatListCmd())
	cmd.AddCommand(newChatShowCmd())

	return cmd
}

func newChatListCmd() *cobra.Command {
	var filter model.ChatFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chat sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Chat.FetchList(cmd.Context(), filter); err != nil {
				return err
			}

			sessions := app.Chat.List().Data
			if sessions == nil {
				sessions = []model.ChatSession{}
			}
			output(cmd).Print(ChatListView{Sessions: sessions})
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Only sessions whose title contains this text")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum sessions to list (0 for the server default)")

	return cmd
}

func newChatShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a chat session with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Chat.FetchSession(cmd.Context(), args[0]); err != nil {
				return err
			}

			output(cmd).Print(app.Chat.Current().Data)
			return nil
		},
	}
}
