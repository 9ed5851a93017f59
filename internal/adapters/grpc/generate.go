package grpc

//go:generate go run ../../../cmd/mediator-gen --config ../../../configs/mediator-gen.yaml --root ../../..
