package adaptergen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/codegen/adaptergen"
)

const (
	mediatorPath = "example.com/app/mediator"
	contractPath = "example.com/app/proto/shop"
	featurePath  = "example.com/app/orders"
)

const contractServer = `package shop

import "context"

type ShopServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderReply, error)
	mustEmbedUnimplementedShopServer()
}

type UnimplementedShopServer struct{}
`

// writeFixture lays out a contract and a feature package under a temp root
func writeFixture(t *testing.T, contract, feature string) string {
	t.Helper()

	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write("proto/shop/shop_grpc.go", contractServer)
	write("proto/shop/shop.go", contract)
	write("orders/orders.go", feature)
	write("orders/orders_test.go", "package orders\n\ntype PlaceOrderCommand struct{}\n")

	return root
}

func fixtureManifest() *adaptergen.Manifest {
	m := &adaptergen.Manifest{
		Service: adaptergen.ServiceManifest{
			Name:            "Shop",
			PackageManifest: adaptergen.PackageManifest{Dir: "proto/shop", ImportPath: contractPath},
		},
		Features: []adaptergen.PackageManifest{
			{Dir: "orders", ImportPath: featurePath},
		},
		MediatorImportPath: mediatorPath,
		Output: adaptergen.OutputManifest{
			File:        "adapter/shop_adapter.gen.go",
			Package:     "adapter",
			ErrorMapper: "mapError",
		},
	}
	return m
}

func generate(t *testing.T, contract, feature string) (string, error) {
	t.Helper()

	root := writeFixture(t, contract, feature)
	m := fixtureManifest()
	require.NoError(t, m.Validate())

	src, err := adaptergen.NewGenerator(m, root).Generate()
	return string(src), err
}

func TestGenerate_MapsFieldsAndNestedStructs(t *testing.T) {
	// Arrange
	contract := `package shop

type PlaceOrderRequest struct {
	Customer string
	Quantity int32
	Lines    []*Line
	Trace    string ` + "`adapter:\"-\"`" + `
}

type Line struct {
	SKU   string
	Price float64
}

type PlaceOrderReply struct {
	OrderID string
	Total   float32 ` + "`adapter:\"narrow\"`" + `
	Primary *Line
}
`
	feature := `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
	Quantity int
	Lines    []OrderLine
}

type OrderLine struct {
	SKU   string
	Price float64
}

type PlaceOrderResponse struct {
	OrderID string
	Total   float64
	Primary OrderLine
}
`

	// Act
	src, err := generate(t, contract, feature)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, src, "// Code generated by mediator-gen. DO NOT EDIT.")
	assert.Contains(t, src, "package adapter")
	assert.Contains(t, src, "type ShopAdapter struct {")
	assert.Contains(t, src, "shop.UnimplementedShopServer")
	assert.Contains(t, src, "func (a *ShopAdapter) PlaceOrder(ctx context.Context, in *shop.PlaceOrderRequest) (*shop.PlaceOrderReply, error) {")
	assert.Contains(t, src, "request := &orders.PlaceOrderCommand{")
	assert.Contains(t, src, "Quantity: int(in.Quantity),")
	assert.Contains(t, src, "Lines:    convertShopLinePtrSliceToOrdersOrderLineSlice(in.Lines),")
	assert.Contains(t, src, "mediator.Send[*orders.PlaceOrderResponse](ctx, a.mediator, request)")
	assert.Contains(t, src, "return nil, mapError(err)")
	assert.Contains(t, src, "Total:   float32(response.Total),")
	assert.Contains(t, src, "Primary: convertOrdersOrderLineToShopLine(&response.Primary),")
	assert.Contains(t, src, "out[i] = convertShopLineToOrdersOrderLineValue(in[i])")
	assert.NotContains(t, src, "Trace")
}

func TestGenerate_MatchesQuerySuffix(t *testing.T) {
	// Arrange
	contract := `package shop

type PlaceOrderRequest struct{ Customer string }
type PlaceOrderReply struct{ Count int64 }
`
	feature := `package orders

import m "example.com/app/mediator"

type PlaceOrderQuery struct {
	m.Query[*PlaceOrderReply]
	Customer string
}

type PlaceOrderReply struct{ Count int }
`

	// Act
	src, err := generate(t, contract, feature)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, src, "request := &orders.PlaceOrderQuery{")
	assert.Contains(t, src, "mediator.Send[*orders.PlaceOrderReply]")
	assert.Contains(t, src, "Count: int64(response.Count),")
}

func TestGenerate_NumericConversions(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		response string
		want     string
	}{
		{name: "int32 to int64", reply: "int64", response: "int32", want: "Value: int64(response.Value),"},
		{name: "uint16 to int32", reply: "int32", response: "uint16", want: "Value: int32(response.Value),"},
		{name: "int32 to float64", reply: "float64", response: "int32", want: "Value: float64(response.Value),"},
		{name: "float32 to float64", reply: "float64", response: "float32", want: "Value: float64(response.Value),"},
		{name: "narrow tag allows int to int32", reply: "int32 `adapter:\"narrow\"`", response: "int", want: "Value: int32(response.Value),"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			contract := "package shop\n\ntype PlaceOrderRequest struct{ Customer string }\ntype PlaceOrderReply struct{ Value " + tt.reply + " }\n"
			feature := `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
}

type PlaceOrderResponse struct{ Value ` + tt.response + ` }
`

			// Act
			src, err := generate(t, contract, feature)

			// Assert
			require.NoError(t, err)
			assert.Contains(t, src, tt.want)
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	okContract := `package shop

type PlaceOrderRequest struct{ Customer string }
type PlaceOrderReply struct{ OrderID string }
`
	tests := []struct {
		name     string
		contract string
		feature  string
		wantErr  string
	}{
		{
			name:     "no request match",
			contract: okContract,
			feature: `package orders

type PlaceOrderResponse struct{ OrderID string }
`,
			wantErr: "no feature type matches any of PlaceOrderRequest, PlaceOrderCommand, PlaceOrderQuery",
		},
		{
			name:     "no response match",
			contract: okContract,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*Receipt]
	Customer string
}

type Receipt struct{ OrderID string }
`,
			wantErr: "no feature type matches any of PlaceOrderReply, PlaceOrderResponse",
		},
		{
			name:     "missing marker",
			contract: okContract,
			feature: `package orders

type PlaceOrderCommand struct{ Customer string }
type PlaceOrderResponse struct{ OrderID string }
`,
			wantErr: "does not embed a mediator request marker",
		},
		{
			name:     "declared response differs",
			contract: okContract,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*Receipt]
	Customer string
}

type Receipt struct{ OrderID string }
type PlaceOrderResponse struct{ OrderID string }
`,
			wantErr: "declares response",
		},
		{
			name:     "field without counterpart",
			contract: okContract,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
	Priority int
}

type PlaceOrderResponse struct{ OrderID string }
`,
			wantErr: "field PlaceOrderCommand.Priority has no counterpart in PlaceOrderRequest",
		},
		{
			name: "unconvertible field",
			contract: `package shop

type PlaceOrderRequest struct{ Customer string }
type PlaceOrderReply struct{ OrderID int }
`,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
}

type PlaceOrderResponse struct{ OrderID string }
`,
			wantErr: "cannot convert string to int",
		},
		{
			name: "narrowing integer without tag",
			contract: `package shop

type PlaceOrderRequest struct{ Customer string }
type PlaceOrderReply struct{ Count int32 }
`,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
}

type PlaceOrderResponse struct{ Count int64 }
`,
			wantErr: "converting int64 to int32 may lose data",
		},
		{
			name: "float to integer without tag",
			contract: `package shop

type PlaceOrderRequest struct{ Customer string }
type PlaceOrderReply struct{ Amount int64 }
`,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
}

type PlaceOrderResponse struct{ Amount float64 }
`,
			wantErr: "converting float64 to int64 may lose data",
		},
		{
			name:     "unmatched source field",
			contract: okContract,
			feature: `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
}

type PlaceOrderResponse struct {
	OrderID string
	Internal string
}
`,
			wantErr: "fields of PlaceOrderResponse have no counterpart in PlaceOrderReply: Internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := generate(t, tt.contract, tt.feature)

			// Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), "method PlaceOrder")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerate_MissingServerInterface(t *testing.T) {
	// Arrange
	root := writeFixture(t, "package shop\n", "package orders\n")
	m := fixtureManifest()
	m.Service.Name = "Store"
	require.NoError(t, m.Validate())

	// Act
	_, err := adaptergen.NewGenerator(m, root).Generate()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interface StoreServer not found")
}

func TestRun_WritesOutputFile(t *testing.T) {
	// Arrange
	root := writeFixture(t, `package shop

type PlaceOrderRequest struct{ Customer string }
type PlaceOrderReply struct{ OrderID string }
`, `package orders

import "example.com/app/mediator"

type PlaceOrderCommand struct {
	mediator.Command[*PlaceOrderResponse]
	Customer string
}

type PlaceOrderResponse struct{ OrderID string }
`)
	m := fixtureManifest()
	require.NoError(t, m.Validate())

	// Act
	out, err := adaptergen.NewGenerator(m, root).Run()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "adapter", "shop_adapter.gen.go"), out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "// Code generated by mediator-gen. DO NOT EDIT."))
}

func TestCommittedGreeterAdapterIsUpToDate(t *testing.T) {
	// Arrange
	root := filepath.Join("..", "..", "..")
	m, err := adaptergen.LoadManifest(filepath.Join(root, "configs", "mediator-gen.yaml"))
	require.NoError(t, err)

	// Act
	src, err := adaptergen.NewGenerator(m, root).Generate()
	require.NoError(t, err)

	// Assert
	committed, err := os.ReadFile(filepath.Join(root, m.Output.File))
	require.NoError(t, err)
	assert.Equal(t, string(committed), string(src), "run go generate ./internal/adapters/grpc")
}
