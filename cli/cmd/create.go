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

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Creates a chat room.",
	Long:  `Creates a chat room with the given title. The creator joins it automatically.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		room, err := sess.CreateRoom(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating room: %v\n", err)
			return
		}
		fmt.Printf("Created room %d: %s\n", room.ID, room.Title)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
