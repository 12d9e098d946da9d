/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hayoon/aptchat/chat/domain"
)

var follow bool // Flag for -f option

// tailCmd represents the tail command
var tailCmd = &cobra.Command{
	Use:   "tail [-f] <room_id>",
	Short: "Displays the last messages of a room.",
	Long: `Displays the message history of a room on standard output.
With -f, stays subscribed and appends live messages until interrupted.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: RoomCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		roomID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid room id %q\n", args[0])
			return
		}

		if !follow {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			defer cancel()

			msgs, err := roomAPI.ListMessages(ctx, roomID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading messages: %v\n", err)
				return
			}
			printMessages(msgs, 0)
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if _, err := sess.Directory().Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing rooms: %v\n", err)
			return
		}
		room, ok := sess.Directory().Get(roomID)
		if !ok {
			fmt.Fprintf(os.Stderr, "Room %d not found\n", roomID)
			return
		}
		if err := sess.SelectRoom(ctx, room); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening room: %v\n", err)
			return
		}

		printed := 0
		printed = printMessages(sess.Timeline().Snapshot(), printed)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-sess.Events():
				if ev.Type != domain.EventTimelineChanged {
					continue
				}
				printed = printMessages(sess.Timeline().Snapshot(), printed)
			}
		}
	},
}

// printMessages prints snapshot entries past the already-printed count and
// returns the new count. Plain stdout has no redraw, so earlier duplicates
// resolved by the snapshot stay as printed.
func printMessages(msgs []domain.Message, printed int) int {
	for _, msg := range msgs[min(printed, len(msgs)):] {
		if msg.System {
			fmt.Printf("-- %s\n", msg.Body)
			continue
		}
		fmt.Printf("[%s] %s: %s\n", msg.DisplayTime, msg.Sender.Name, msg.Body)
	}
	if len(msgs) > printed {
		return len(msgs)
	}
	return printed
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep the subscription open and print live messages")
}
