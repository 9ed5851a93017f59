package main

import "github.com/andrescamacho/grpc-mediator-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
