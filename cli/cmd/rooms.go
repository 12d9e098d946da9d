/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// roomsCmd represents the rooms command
var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Lists chat rooms.",
	Long: `Lists the chat rooms visible to the configured user, with participant
counts, unread markers and status.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		rooms, err := sess.Directory().Refresh(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing rooms: %v\n", err)
			return
		}
		if len(rooms) == 0 {
			fmt.Println("No rooms.")
			return
		}

		for _, room := range rooms {
			unread := " "
			if room.HasUnread {
				unread = "*"
			}
			status := ""
			if room.Closed() {
				status = " (closed)"
			}
			fmt.Printf("%s %4d  %-30s %3d명%s\n", unread, room.ID, room.Title, room.ParticipantCount, status)
		}
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}
