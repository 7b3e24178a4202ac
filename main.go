/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/pressxtohonk/pressxtohonk-bot/cmd"

func main() {
	cmd.Execute()
}
