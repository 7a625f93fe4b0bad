package application

import (
	"context"
	"math/big"
	"time"

	"chainapi/internal/chain"
	"chainapi/internal/domain"
	"chainapi/internal/infrastructure/telemetry"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrJournalDisabled = errors.New("transaction journal is disabled")

type ChainIDSource interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Journal records mined mutations in the repository and publishes their
// events. Either sink may be nil.
type Journal struct {
	repo      JournalRepository
	publisher EventPublisher
	chainIDs  ChainIDSource
	now       func() time.Time
}

func NewJournal(chainIDs ChainIDSource, repo JournalRepository, publisher EventPublisher) (*Journal, error) {
	if chainIDs == nil {
		return nil, errors.New("journal requires a chain id source")
	}
	return &Journal{repo: repo, publisher: publisher, chainIDs: chainIDs, now: time.Now}, nil
}

func (j *Journal) Enabled() bool {
	return j.repo != nil
}

func (j *Journal) Record(ctx context.Context, outcome *chain.Outcome, event domain.ContractEvent) error {
	if j.repo == nil && j.publisher == nil {
		return nil
	}
	ctx, span := otel.Tracer("chainapi/journal").Start(ctx, "journal.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("tx.hash", outcome.TxHash()),
		attribute.String("contract.method", outcome.Method),
	)

	id, err := j.chainIDs.ChainID(ctx)
	if err != nil {
		telemetry.Fail(span, err)
		return err
	}
	chainID := id.Uint64()

	var firstErr error
	if j.repo != nil {
		args := make(map[string]string, len(event.Args))
		for _, arg := range event.Args {
			args[arg.Name] = arg.Value
		}
		entry := domain.JournalEntry{
			ChainID:     chainID,
			TxHash:      outcome.TxHash(),
			Contract:    outcome.Contract.Hex(),
			Method:      outcome.Method,
			Sender:      outcome.Sender.Hex(),
			Event:       event.Event,
			Args:        args,
			BlockNumber: outcome.BlockNumber(),
			CreatedAt:   j.now().UTC(),
		}
		if err := j.repo.StoreEntries(ctx, []domain.JournalEntry{entry}); err != nil {
			firstErr = errors.Wrap(err, "store journal entry")
		}
	}
	if j.publisher != nil {
		if events := outcome.Events(); len(events) > 0 {
			if err := j.publisher.PublishEvents(ctx, chainID, events); err != nil && firstErr == nil {
				firstErr = errors.Wrap(err, "publish events")
			}
		}
	}
	telemetry.Fail(span, firstErr)
	return firstErr
}

// Query lists journal entries of the current chain, newest first.
func (j *Journal) Query(ctx context.Context, filter JournalQueryFilter) ([]domain.JournalEntry, error) {
	if j.repo == nil {
		return nil, ErrJournalDisabled
	}
	filter = filter.normalize()
	for _, field := range []*string{&filter.Contract, &filter.Sender} {
		if *field == "" {
			continue
		}
		address, err := parseAddress("address filter", *field)
		if err != nil {
			return nil, err
		}
		*field = address.Hex()
	}
	if filter.ChainID == nil {
		id, err := j.chainIDs.ChainID(ctx)
		if err != nil {
			return nil, err
		}
		chainID := id.Uint64()
		filter.ChainID = &chainID
	}
	return j.repo.QueryEntries(ctx, filter)
}
