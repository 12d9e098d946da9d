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
	"time"

	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <room_id> <message...>",
	Short: "Sends one message to a room.",
	Long: `Opens the room, publishes one message and exits. The message lands in
the timeline on server echo, so delivery is not confirmed locally.`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: RoomCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		roomID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid room id %q\n", args[0])
			return
		}
		text := strings.Join(args[1:], " ")

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()

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
		if err := sess.SendMessage(text); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending message: %v\n", err)
			return
		}
		fmt.Println("Sent.")
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
