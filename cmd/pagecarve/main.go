package main

import (
	"github.com/pagecarve/pagecarve/cmd/pagecarve/cmd"
)

func main() {
	cmd.Execute()
}
