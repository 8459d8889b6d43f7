package main

import (
	"boscoin.io/devote/cmd/devote/cmd"
)

func main() {
	cmd.Execute()
}
