package main

import "github.com/dl-alexandre/dsync/internal/cli"

func main() {
	_ = cli.Execute()
}
