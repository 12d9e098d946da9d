/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// RoomCompletionFunc completes a room id argument with the room titles
// from the directory.
func RoomCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	rooms, err := roomAPI.ListRooms(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	completions := make([]string, 0, len(rooms))
	for _, room := range rooms {
		completions = append(completions, strconv.Itoa(room.ID)+"\t"+room.Title)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
