package main

import "github.com/crypt0miester/ore-cli-v2/cmd/ore-cli/cmd"

func main() {
	cmd.Execute()
}
