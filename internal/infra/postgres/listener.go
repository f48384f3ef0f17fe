package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Listener delivers table-level change notifications over Postgres
// LISTEN/NOTIFY. Migrations install a statement trigger per watched table
// that emits on the "<table>_changes" channel.
type Listener struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewListener(pool *pgxpool.Pool) *Listener {
	return &Listener{pool: pool, logger: log.Default()}
}

// Subscribe holds one pooled connection for the lifetime of the
// subscription. Events are coalesced: a burst of notifications while the
// consumer is busy collapses into one pending event.
func (l *Listener) Subscribe(ctx context.Context, table string) (<-chan struct{}, func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire listen conn: %w", err)
	}

	channel := pgx.Identifier{table + "_changes"}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, nil, fmt.Errorf("listen %s: %w", table, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan struct{}, 1)
	go func() {
		defer conn.Release()
		defer close(events)
		for {
			if _, err := conn.Conn().WaitForNotification(subCtx); err != nil {
				if subCtx.Err() == nil {
					l.logger.Printf("listener for %s: %v", table, err)
				}
				return
			}
			select {
			case events <- struct{}{}:
			default:
			}
		}
	}()
	return events, cancel, nil
}
