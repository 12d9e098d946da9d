/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// leaveCmd represents the leave command
var leaveCmd = &cobra.Command{
	Use:               "leave <room_id>",
	Short:             "Leaves a room.",
	Long:              `Removes the configured user from a room's membership.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: RoomCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		roomID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid room id %q\n", args[0])
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if err := roomAPI.LeaveRoom(ctx, roomID); err != nil {
			fmt.Fprintf(os.Stderr, "Error leaving room: %v\n", err)
			return
		}
		fmt.Printf("Left room %d.\n", roomID)
	},
}

func init() {
	rootCmd.AddCommand(leaveCmd)
}
