package main

import "bulkops/internal/cli"

func main() {
	cli.Execute()
}
