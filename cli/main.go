/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/hayoon/aptchat/cli/cmd"

func main() {
	cmd.Execute()
}
