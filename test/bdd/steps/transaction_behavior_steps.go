package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/grpc-mediator-go/internal/adapters/persistence"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/behaviors"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/commands"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/queries"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
	"github.com/andrescamacho/grpc-mediator-go/test/helpers"
)

// countingTransactionManager counts the transactions the behavior opens
type countingTransactionManager struct {
	inner common.TransactionManager
	begun int
}

func (m *countingTransactionManager) Begin(ctx context.Context) (context.Context, common.Transaction, error) {
	m.begun++
	return m.inner.Begin(ctx)
}

func initializeTransactionBehaviorSteps(sc *godog.ScenarioContext, c *mediatorPipelineContext) {
	sc.Step(`^a mediator whose pipeline ends with the transaction behavior$`, c.aMediatorWithTheTransactionBehavior)
	sc.Step(`^a behavior after the transaction that fails once the handler returns$`, c.aBehaviorAfterTheTransactionThatFails)
	sc.Step(`^a greeting for "([^"]*)" was already recorded$`, c.aGreetingWasAlreadyRecorded)
	sc.Step(`^I record a greeting for "([^"]*)"$`, c.iRecordAGreetingFor)
	sc.Step(`^I record a greeting for "([^"]*)" and the handler fails afterwards$`, c.iRecordAGreetingAndTheHandlerFails)
	sc.Step(`^I list the greetings for "([^"]*)"$`, c.iListTheGreetingsFor)
	sc.Step(`^(\d+) greetings? should be stored for "([^"]*)"$`, c.greetingsShouldBeStoredFor)
	sc.Step(`^the listing should contain (\d+) greetings?$`, c.theListingShouldContain)
	sc.Step(`^no transaction should have been opened$`, c.noTransactionShouldHaveBeenOpened)
}

func (c *mediatorPipelineContext) aMediatorWithTheTransactionBehavior() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	c.db = helpers.SharedTestDB
	c.txManager = &countingTransactionManager{inner: persistence.NewGormTransactionManager(c.db)}

	repo := persistence.NewGormGreetingRepository(c.db)
	record := commands.NewRecordGreetingHandler(repo, nil)

	c.builder.Use(behaviors.NewRecoveryBehavior())
	c.builder.Use(behaviors.NewTransactionBehavior(c.txManager))

	err := mediator.Handle[*commands.RecordGreetingCommand](c.builder, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			response, err := record.Handle(ctx, request)
			if err == nil && c.failAfterWrite {
				return nil, errors.New("handler failed after writing")
			}
			return response, err
		}))
	if err != nil {
		return err
	}

	return mediator.Handle[*queries.ListGreetingsQuery](c.builder, queries.NewListGreetingsHandler(repo))
}

func (c *mediatorPipelineContext) aBehaviorAfterTheTransactionThatFails() error {
	c.builder.Use(mediator.Named("post_check", mediator.Middleware(
		func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			if _, err := next(ctx, request); err != nil {
				return nil, err
			}
			return nil, errors.New("post check rejected the response")
		})))
	return nil
}

func (c *mediatorPipelineContext) aGreetingWasAlreadyRecorded(name string) error {
	g, err := greeting.NewGreeting(name, "", time.Now())
	if err != nil {
		return err
	}
	return persistence.NewGormGreetingRepository(c.db).Create(context.Background(), g)
}

func (c *mediatorPipelineContext) iRecordAGreetingFor(name string) error {
	return c.send(context.Background(), &commands.RecordGreetingCommand{Name: name})
}

func (c *mediatorPipelineContext) iRecordAGreetingAndTheHandlerFails(name string) error {
	c.failAfterWrite = true
	return c.iRecordAGreetingFor(name)
}

func (c *mediatorPipelineContext) iListTheGreetingsFor(name string) error {
	if err := c.send(context.Background(), &queries.ListGreetingsQuery{Name: name}); err != nil {
		return err
	}
	if listing, ok := c.response.(*queries.ListGreetingsResponse); ok {
		c.listing = listing
	}
	return nil
}

func (c *mediatorPipelineContext) greetingsShouldBeStoredFor(expected int, name string) error {
	var count int64
	if err := c.db.Model(&persistence.GreetingModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count greetings: %w", err)
	}
	if int(count) != expected {
		return fmt.Errorf("expected %d greetings for %s, found %d", expected, name, count)
	}
	return nil
}

func (c *mediatorPipelineContext) theListingShouldContain(expected int) error {
	if c.listing == nil {
		return fmt.Errorf("no listing was returned")
	}
	if c.listing.Count != expected {
		return fmt.Errorf("expected %d greetings in listing, got %d", expected, c.listing.Count)
	}
	return nil
}

func (c *mediatorPipelineContext) noTransactionShouldHaveBeenOpened() error {
	if c.txManager.begun != 0 {
		return fmt.Errorf("expected no transaction, %d were opened", c.txManager.begun)
	}
	return nil
}
