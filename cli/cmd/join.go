/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/hayoon/aptchat/chat/domain"
	"github.com/hayoon/aptchat/chat/session"
)

// joinCmd represents the join command
var joinCmd = &cobra.Command{
	Use:   "join <room_id>",
	Short: "Opens a chat room in a tview-based interface.",
	Long: `Opens a chat room: joins it if needed, loads its history and streams
live messages in a tview-based interface. You can type messages at the
bottom and see the timeline above. Ctrl+C exits without leaving the room.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: RoomCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		roomID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid room id %q\n", args[0])
			os.Exit(1)
		}
		if err := runChatUITview(sess, roomID); err != nil {
			fmt.Fprintf(os.Stderr, "Chat UI error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}

func runChatUITview(s *session.Session, roomID int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := s.Directory().Refresh(ctx); err != nil {
		return fmt.Errorf("refresh rooms: %w", err)
	}
	room, ok := s.Directory().Get(roomID)
	if !ok {
		return fmt.Errorf("room %d not found", roomID)
	}

	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true).
		ScrollToEnd()

	inputField := tview.NewInputField().
		SetLabel(s.User().Name + " ❯❯ ").
		SetFieldWidth(0).
		SetAcceptanceFunc(tview.InputFieldMaxLength(256))

	statusLine := tview.NewTextView().SetDynamicColors(true)
	statusLine.SetText(statusText(room.Title, s.State()))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statusLine, 1, 0, false).
		AddItem(textView, 0, 1, false).
		AddItem(inputField, 1, 0, true)

	app.SetRoot(flex, true).SetFocus(inputField)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.Events():
				switch ev.Type {
				case domain.EventTimelineChanged:
					app.QueueUpdateDraw(func() {
						renderTimeline(textView, s.Timeline().Snapshot())
					})
				case domain.EventStateChanged:
					app.QueueUpdateDraw(func() {
						statusLine.SetText(statusText(room.Title, ev.State))
					})
				case domain.EventSystemNotice:
					app.QueueUpdateDraw(func() {
						fmt.Fprintf(textView, "[green]%s\n", tview.Escape(ev.Notice))
					})
				case domain.EventError:
					app.QueueUpdateDraw(func() {
						fmt.Fprintf(textView, "[red]%v\n", ev.Err)
					})
				}
			}
		}
	}()

	go func() {
		if err := s.SelectRoom(ctx, room); err != nil {
			app.QueueUpdateDraw(func() {
				fmt.Fprintf(textView, "[red]Error opening room: %v\n", err)
			})
		}
	}()

	// Send messages when Enter is pressed
	inputField.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := strings.TrimSpace(inputField.GetText())
			if text == "" {
				return
			}
			if err := s.SendMessage(text); err != nil {
				fmt.Fprintf(textView, "[red]%s\n", sendErrorText(err))
			}
			inputField.SetText("")
		}
	})

	// Exit on Ctrl+C. The room membership is kept; use `leave` to exit it.
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			cancel()
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.Run(); err != nil {
		cancel()
		return err
	}
	return nil
}

func statusText(title string, state domain.ConnectionState) string {
	color := "red"
	switch state {
	case domain.Connected:
		color = "green"
	case domain.Connecting:
		color = "yellow"
	}
	return fmt.Sprintf("[white]%s  [%s]%s", tview.Escape(title), color, state)
}

// renderTimeline redraws the whole view from the snapshot. Duplicate
// suppression and flag clearing are snapshot concerns, so each change is a
// full redraw rather than an append.
func renderTimeline(textView *tview.TextView, msgs []domain.Message) {
	textView.Clear()
	for _, msg := range msgs {
		switch {
		case msg.System:
			fmt.Fprintf(textView, "[green]%s\n", tview.Escape(msg.Body))
		case msg.Transient:
			fmt.Fprintf(textView, "[gray][%s] %s: %s\n",
				msg.DisplayTime, tview.Escape(msg.Sender.Name), tview.Escape(msg.Body))
		default:
			fmt.Fprintf(textView, "[white][%s] [blue]%s[white]: %s\n",
				msg.DisplayTime, tview.Escape(msg.Sender.Name), tview.Escape(msg.Body))
		}
	}
	textView.ScrollToEnd()
}

func sendErrorText(err error) string {
	switch {
	case err == session.ErrEmptyMessage:
		return "Cannot send an empty message."
	case err == session.ErrRoomClosed:
		return "This room has been closed."
	case err == session.ErrNotConnected:
		return "Not connected; message not sent."
	default:
		return fmt.Sprintf("Failed to send message: %v", err)
	}
}
