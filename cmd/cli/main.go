package main

import "github.com/clinsight/reop/pkg/cli"

func main() {
	cli.Execute()
}
