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

const defaultCloseNotice = "관리자가 채팅방을 종료했습니다."

// closeCmd represents the close command
var closeCmd = &cobra.Command{
	Use:   "close <room_id> [notice...]",
	Short: "Closes a room (admin).",
	Long: `Transitions a room to INACTIVE with a farewell notice. Requires the
admin endpoint set (--admin or admin: true in the config file).
Members keep the room's history but can no longer send messages.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: RoomCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		roomID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid room id %q\n", args[0])
			return
		}
		notice := defaultCloseNotice
		if len(args) > 1 {
			notice = strings.Join(args[1:], " ")
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if err := sess.CloseRoom(ctx, roomID, notice); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing room: %v\n", err)
			return
		}
		fmt.Printf("Closed room %d.\n", roomID)
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
