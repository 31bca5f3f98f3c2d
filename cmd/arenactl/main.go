package main

import (
	"github.com/zkarcade/arena/internal/cli"
)

func main() {
	cli.Execute()
}
