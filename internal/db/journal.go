package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/spawn"
	"github.com/udisondev/swarmspawn/internal/world"
)

// UnreachableStore persists unreachable cells.
type UnreachableStore interface {
	InsertBatch(ctx context.Context, cells []UnreachableCell) error
}

// CycleStore persists spawn cycle summaries.
type CycleStore interface {
	Insert(ctx context.Context, rep spawn.CycleReport) (int64, error)
}

const (
	journalBuffer    = 1024
	journalBatchSize = 128
	flushTimeout     = 5 * time.Second
)

type journalEvent struct {
	cell   *UnreachableCell
	report *spawn.CycleReport
}

// Journal is a spawn.Observer that persists events from its own goroutine.
// The simulation never waits for the database: when the buffer is full the
// event is dropped and counted.
type Journal struct {
	cells  UnreachableStore
	cycles CycleStore
	events chan journalEvent

	dropped atomic.Int64
}

// NewJournal creates a journal writing to the given stores.
func NewJournal(cells UnreachableStore, cycles CycleStore) *Journal {
	return &Journal{
		cells:  cells,
		cycles: cycles,
		events: make(chan journalEvent, journalBuffer),
	}
}

// UnitSpawned implements spawn.Observer. Individual units are not persisted.
func (j *Journal) UnitSpawned(*model.Unit) {}

// CellUnreachable implements spawn.Observer.
func (j *Journal) CellUnreachable(c world.Cell, at time.Time) {
	j.enqueue(journalEvent{cell: &UnreachableCell{Cell: c, DiscoveredAt: at}})
}

// CycleCompleted implements spawn.Observer.
func (j *Journal) CycleCompleted(r spawn.CycleReport) {
	j.enqueue(journalEvent{report: &r})
}

func (j *Journal) enqueue(ev journalEvent) {
	select {
	case j.events <- ev:
	default:
		n := j.dropped.Add(1)
		slog.Warn("spawn journal full, event dropped", "dropped", n)
	}
}

// Dropped returns the number of events dropped because the buffer was full.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Run writes events until ctx is canceled, then flushes what is buffered.
func (j *Journal) Run(ctx context.Context) error {
	slog.Info("spawn journal started")

	for {
		select {
		case <-ctx.Done():
			// Дописываем оставшееся с отдельным таймаутом.
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			j.drain(flushCtx)
			cancel()
			slog.Info("spawn journal stopped")
			return nil

		case ev := <-j.events:
			j.write(ctx, ev)
		}
	}
}

func (j *Journal) drain(ctx context.Context) {
	for {
		select {
		case ev := <-j.events:
			j.write(ctx, ev)
		default:
			return
		}
	}
}

// write stores ev. Consecutive unreachable cells already buffered are
// batched into the same insert.
func (j *Journal) write(ctx context.Context, ev journalEvent) {
	if ev.report != nil {
		j.writeCycle(ctx, *ev.report)
		return
	}

	batch := []UnreachableCell{*ev.cell}
	var pendingReport *spawn.CycleReport

collect:
	for len(batch) < journalBatchSize {
		select {
		case next := <-j.events:
			if next.report != nil {
				pendingReport = next.report
				break collect
			}
			batch = append(batch, *next.cell)
		default:
			break collect
		}
	}

	if err := j.cells.InsertBatch(ctx, batch); err != nil {
		slog.Error("persisting unreachable cells", "count", len(batch), "error", err)
	}
	if pendingReport != nil {
		j.writeCycle(ctx, *pendingReport)
	}
}

func (j *Journal) writeCycle(ctx context.Context, rep spawn.CycleReport) {
	id, err := j.cycles.Insert(ctx, rep)
	if err != nil {
		slog.Error("persisting spawn cycle", "placed", rep.Placed, "error", err)
		return
	}
	slog.Debug("spawn cycle persisted", "cycleID", id)
}
