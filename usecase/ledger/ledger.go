// Package ledger keeps item positions contiguous inside ordered containers.
//
// The same algorithm orders columns inside a board and tasks inside a column;
// the container kind is chosen by the repository.Sequence passed in. Every call
// must run inside the transaction that also persists the moved item, after the
// affected containers were locked with Lock.
package ledger

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

type Ledger struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{logger: logger}
}

// Lock locks each distinct container once, in a stable order, so two
// transactions touching the same pair of containers cannot deadlock.
func (l *Ledger) Lock(ctx context.Context, seq repository.Sequence, containers ...string) error {
	unique := make([]string, 0, len(containers))
	seen := make(map[string]struct{}, len(containers))
	for _, c := range containers {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	sort.Strings(unique)

	for _, c := range unique {
		if err := seq.Lock(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Append returns the placement for a new item at the end of container.
func (l *Ledger) Append(ctx context.Context, seq repository.Sequence, container string) (domain.Placement, error) {
	count, err := seq.Count(ctx, container)
	if err != nil {
		return domain.Placement{}, err
	}
	return domain.PlanAppend(container, count).Target, nil
}

// Move shifts the siblings of an item travelling from one placement to another.
// The target is validated against the current size of its container; nothing
// is written when it is out of range. The caller persists the moved item at
// the returned plan's Target.
func (l *Ledger) Move(ctx context.Context, seq repository.Sequence, from, to domain.Placement) (domain.MovePlan, error) {
	count, err := seq.Count(ctx, to.Container)
	if err != nil {
		return domain.MovePlan{}, err
	}
	if err := domain.ValidateTarget(from, to, count); err != nil {
		return domain.MovePlan{}, err
	}

	plan := domain.PlanMove(from, to)
	if err := l.apply(ctx, seq, plan); err != nil {
		return domain.MovePlan{}, err
	}
	return plan, nil
}

// Remove closes the gap left by an item deleted from at.
func (l *Ledger) Remove(ctx context.Context, seq repository.Sequence, at domain.Placement) error {
	return l.apply(ctx, seq, domain.PlanRemoval(at))
}

func (l *Ledger) apply(ctx context.Context, seq repository.Sequence, plan domain.MovePlan) error {
	for _, shift := range plan.Shifts {
		if err := seq.Shift(ctx, shift); err != nil {
			return err
		}
		l.logger.Debug("positions shifted",
			zap.String("container", shift.Container),
			zap.Int("from", shift.From),
			zap.Int("to", shift.To),
			zap.Int("delta", shift.Delta))
	}
	return nil
}
