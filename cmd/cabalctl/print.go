package main

import (
	"fmt"

	"cabal/internal/game"

	"github.com/fatih/color"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	header  = color.New(color.FgHiWhite, color.Bold)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printLeaderboard(board string, rows []game.LeaderboardRow) {
	header.Printf("%-5s %-28s %8s\n", "#", "player", board)
	for _, r := range rows {
		name := r.FirstName
		if r.LastName != "" {
			name += " " + r.LastName
		}
		if r.Username != "" {
			name += " (@" + r.Username + ")"
		}
		fmt.Printf("%-5d %-28s %8d\n", r.Rank, name, r.Value)
	}
	if len(rows) == 0 {
		fmt.Println("no players yet")
	}
}
