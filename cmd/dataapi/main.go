package main

import "github.com/docuflow/dataapi/pkg/cli"

func main() {
	cli.Execute(cli.NewRootCommand(cli.Options{
		Name:        "dataapi",
		Description: "Client for a document database data API",
	}))
}
