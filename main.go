/*
	Copyright 2025 StratHub
*/

package main

import "github.com/strathub/strathub-service/cmd"

func main() {
	cmd.Execute()
}
