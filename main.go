package main

import (
	"os"

	"github.com/Rajangupta9/taskflow/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
