package main

import "sales-dashboard/cli"

func main() {
	cli.Execute()
}
