package main

import "github.com/kitagry/copilotls/cmd"

func main() {
	cmd.Execute()
}
