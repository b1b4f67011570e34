package main

import (
	"fmt"

	"lendfi/cmd"
)

var (
	version = "dev"
	commit  = "head"
)

func main() {
	cmd.Execute(fmt.Sprintf("%s-%s", version, commit))
}
