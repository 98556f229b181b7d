package main

import "github.com/KaramelBytes/lookatdata-cli/cmd"

func main() {
	cmd.Execute()
}
