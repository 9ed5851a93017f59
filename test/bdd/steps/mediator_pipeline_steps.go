package steps

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"gorm.io/gorm"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/queries"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// PingCommand and PongQuery are the request types the pipeline features dispatch
type PingCommand struct {
	mediator.Command[*PingReply]
}

type PongQuery struct {
	mediator.Query[*PingReply]
}

// PlainRequest carries neither the command nor the query marker
type PlainRequest struct{}

// PingReply answers every request type
type PingReply struct {
	Text string
}

type mediatorPipelineContext struct {
	builder      *mediator.Builder
	dispatcher   *mediator.Dispatcher
	lazy         bool
	handlerErrs  map[string]error
	handlerCalls int
	trace        []string
	runs         map[string]int

	response mediator.Response
	err      error
	buildErr error

	// transaction scenarios
	db             *gorm.DB
	txManager      *countingTransactionManager
	failAfterWrite bool
	listing        *queries.ListGreetingsResponse
}

func (c *mediatorPipelineContext) reset() {
	c.builder = mediator.NewBuilder()
	c.dispatcher = nil
	c.lazy = false
	c.handlerErrs = make(map[string]error)
	c.handlerCalls = 0
	c.trace = nil
	c.runs = make(map[string]int)
	c.response = nil
	c.err = nil
	c.buildErr = nil
	c.db = nil
	c.txManager = nil
	c.failAfterWrite = false
	c.listing = nil
}

// InitializeMediatorPipelineScenario registers the mediator pipeline and transaction behavior steps
func InitializeMediatorPipelineScenario(sc *godog.ScenarioContext) {
	c := &mediatorPipelineContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	sc.Step(`^a mediator with a handler for "([^"]*)"$`, c.aMediatorWithAHandlerFor)
	sc.Step(`^a second handler for "([^"]*)"$`, c.aMediatorWithAHandlerFor)
	sc.Step(`^the handler for "([^"]*)" fails with "([^"]*)"$`, c.theHandlerForFailsWith)
	sc.Step(`^the behaviors "([^"]*)" are registered$`, c.theBehaviorsAreRegistered)
	sc.Step(`^a behavior "([^"]*)" that answers "([^"]*)" without calling the handler$`, c.aBehaviorThatAnswers)
	sc.Step(`^a behavior "([^"]*)" that fails with "([^"]*)"$`, c.aBehaviorThatFailsWith)
	sc.Step(`^the behavior "([^"]*)" applies only to commands$`, c.theBehaviorAppliesOnlyToCommands)
	sc.Step(`^validation is deferred to dispatch time$`, c.validationIsDeferred)

	sc.Step(`^I build the mediator$`, c.iBuildTheMediator)
	sc.Step(`^I send a "([^"]*)" request$`, c.iSendARequest)
	sc.Step(`^I send a "([^"]*)" request with a cancelled context$`, c.iSendARequestWithACancelledContext)

	sc.Step(`^the dispatch should succeed$`, c.theDispatchShouldSucceed)
	sc.Step(`^the dispatch should succeed with response "([^"]*)"$`, c.theDispatchShouldSucceedWithResponse)
	sc.Step(`^the dispatch should fail with kind "([^"]*)"$`, c.theDispatchShouldFailWithKind)
	sc.Step(`^the error should mention "([^"]*)"$`, c.theErrorShouldMention)
	sc.Step(`^the build should fail mentioning "([^"]*)"$`, c.theBuildShouldFailMentioning)
	sc.Step(`^the trace should be "([^"]*)"$`, c.theTraceShouldBe)
	sc.Step(`^the trace should be empty$`, c.theTraceShouldBeEmpty)
	sc.Step(`^the handler should not have been called$`, c.theHandlerShouldNotHaveBeenCalled)
	sc.Step(`^the behavior "([^"]*)" should have run (\d+) times$`, c.theBehaviorShouldHaveRun)
	sc.Step(`^the request types should classify as:$`, c.theRequestTypesShouldClassifyAs)

	initializeTransactionBehaviorSteps(sc, c)
}

func requestTypeFor(name string) (reflect.Type, error) {
	switch name {
	case "PingCommand":
		return reflect.TypeFor[*PingCommand](), nil
	case "PongQuery":
		return reflect.TypeFor[*PongQuery](), nil
	case "PlainRequest":
		return reflect.TypeFor[*PlainRequest](), nil
	default:
		return nil, fmt.Errorf("unknown request type %q", name)
	}
}

func requestFor(name string) (mediator.Request, error) {
	switch name {
	case "PingCommand":
		return &PingCommand{}, nil
	case "PongQuery":
		return &PongQuery{}, nil
	case "PlainRequest":
		return &PlainRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown request type %q", name)
	}
}

func (c *mediatorPipelineContext) aMediatorWithAHandlerFor(name string) error {
	requestType, err := requestTypeFor(name)
	if err != nil {
		return err
	}

	return c.builder.Register(requestType, mediator.HandlerFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		c.handlerCalls++
		c.trace = append(c.trace, "handler")
		if err := c.handlerErrs[name]; err != nil {
			return nil, err
		}
		return &PingReply{Text: "pong"}, nil
	}))
}

func (c *mediatorPipelineContext) theHandlerForFailsWith(name, message string) error {
	c.handlerErrs[name] = errors.New(message)
	return nil
}

func (c *mediatorPipelineContext) theBehaviorsAreRegistered(names string) error {
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		c.builder.Use(mediator.Named(name, mediator.Middleware(
			func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
				c.trace = append(c.trace, name+":before")
				response, err := next(ctx, request)
				c.trace = append(c.trace, name+":after")
				return response, err
			})))
	}
	return nil
}

func (c *mediatorPipelineContext) aBehaviorThatAnswers(name, answer string) error {
	c.builder.Use(mediator.Named(name, mediator.Middleware(
		func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			c.trace = append(c.trace, name)
			return &PingReply{Text: answer}, nil
		})))
	return nil
}

func (c *mediatorPipelineContext) aBehaviorThatFailsWith(name, message string) error {
	c.builder.Use(mediator.Named(name, mediator.Middleware(
		func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			return nil, errors.New(message)
		})))
	return nil
}

func (c *mediatorPipelineContext) theBehaviorAppliesOnlyToCommands(name string) error {
	c.builder.UseForKind(mediator.KindCommand, mediator.Named(name, mediator.Middleware(
		func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			c.runs[name]++
			return next(ctx, request)
		})))
	return nil
}

func (c *mediatorPipelineContext) validationIsDeferred() error {
	c.lazy = true
	return nil
}

func (c *mediatorPipelineContext) build() error {
	if c.dispatcher != nil {
		return nil
	}

	var opts []mediator.BuildOption
	if c.lazy {
		opts = append(opts, mediator.WithLazyValidation())
	}

	dispatcher, err := c.builder.Build(opts...)
	if err != nil {
		return err
	}
	c.dispatcher = dispatcher
	return nil
}

func (c *mediatorPipelineContext) iBuildTheMediator() error {
	c.buildErr = c.build()
	return nil
}

func (c *mediatorPipelineContext) send(ctx context.Context, request mediator.Request) error {
	if err := c.build(); err != nil {
		return fmt.Errorf("failed to build mediator: %w", err)
	}
	c.response, c.err = c.dispatcher.Send(ctx, request)
	return nil
}

func (c *mediatorPipelineContext) iSendARequest(name string) error {
	request, err := requestFor(name)
	if err != nil {
		return err
	}
	return c.send(context.Background(), request)
}

func (c *mediatorPipelineContext) iSendARequestWithACancelledContext(name string) error {
	request, err := requestFor(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return c.send(ctx, request)
}

func (c *mediatorPipelineContext) theDispatchShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected dispatch to succeed, got: %w", c.err)
	}
	return nil
}

func (c *mediatorPipelineContext) theDispatchShouldSucceedWithResponse(expected string) error {
	if err := c.theDispatchShouldSucceed(); err != nil {
		return err
	}

	reply, ok := c.response.(*PingReply)
	if !ok {
		return fmt.Errorf("expected *PingReply, got %T", c.response)
	}
	if reply.Text != expected {
		return fmt.Errorf("expected response %q, got %q", expected, reply.Text)
	}
	return nil
}

func (c *mediatorPipelineContext) theDispatchShouldFailWithKind(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected dispatch to fail with %s, but it succeeded", kind)
	}
	if actual := mediator.ErrorKindOf(c.err).String(); actual != kind {
		return fmt.Errorf("expected error kind %s, got %s (%v)", kind, actual, c.err)
	}
	return nil
}

func (c *mediatorPipelineContext) theErrorShouldMention(text string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error mentioning %q, got none", text)
	}
	if !strings.Contains(c.err.Error(), text) {
		return fmt.Errorf("expected error to mention %q, got %q", text, c.err.Error())
	}
	return nil
}

func (c *mediatorPipelineContext) theBuildShouldFailMentioning(text string) error {
	if c.buildErr == nil {
		return fmt.Errorf("expected build to fail")
	}
	if !strings.Contains(c.buildErr.Error(), text) {
		return fmt.Errorf("expected build error to mention %q, got %q", text, c.buildErr.Error())
	}
	return nil
}

func (c *mediatorPipelineContext) theTraceShouldBe(expected string) error {
	if actual := strings.Join(c.trace, ", "); actual != expected {
		return fmt.Errorf("expected trace %q, got %q", expected, actual)
	}
	return nil
}

func (c *mediatorPipelineContext) theTraceShouldBeEmpty() error {
	if len(c.trace) != 0 {
		return fmt.Errorf("expected empty trace, got %v", c.trace)
	}
	return nil
}

func (c *mediatorPipelineContext) theHandlerShouldNotHaveBeenCalled() error {
	if c.handlerCalls != 0 {
		return fmt.Errorf("expected handler not to be called, was called %d times", c.handlerCalls)
	}
	return nil
}

func (c *mediatorPipelineContext) theBehaviorShouldHaveRun(name string, times int) error {
	if c.runs[name] != times {
		return fmt.Errorf("expected behavior %s to run %d times, ran %d", name, times, c.runs[name])
	}
	return nil
}

func (c *mediatorPipelineContext) theRequestTypesShouldClassifyAs(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		name := getCellValue(table, row, "request")
		request, err := requestFor(name)
		if err != nil {
			return err
		}

		expected := getCellValue(table, row, "kind")
		if actual := mediator.KindOf(request).String(); actual != expected {
			return fmt.Errorf("expected %s to classify as %s, got %s", name, expected, actual)
		}
	}
	return nil
}

// getCellValue returns the cell of row under columnName, or "" when the column is missing
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	for i, cell := range table.Rows[0].Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}
