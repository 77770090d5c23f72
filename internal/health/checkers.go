package health

import (
	"context"
	"errors"

	"github.com/ordervox/ordervox/internal/menu"
)

// Pinger is satisfied by database pools that support a connectivity probe
// (e.g. *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// MenuChecker reports ready when the menu store holds a catalog with at
// least one item.
func MenuChecker(store menu.Store) Checker {
	return Checker{
		Name: "menu",
		Check: func(ctx context.Context) error {
			m, err := store.Snapshot(ctx)
			if err != nil {
				return err
			}
			if len(m.Items) == 0 {
				return errors.New("catalog is empty")
			}
			return nil
		},
	}
}

// DatabaseChecker reports ready when the database answers a ping.
func DatabaseChecker(name string, db Pinger) Checker {
	return Checker{
		Name: name,
		Check: func(ctx context.Context) error {
			return db.Ping(ctx)
		},
	}
}

// GatewayChecker reports ready while the order-management client's circuit
// breaker is admitting calls. It does not probe the upstream itself; an open
// breaker is the signal that recent calls have been failing.
func GatewayChecker(gw interface{ Healthy() bool }) Checker {
	return Checker{
		Name: "pos",
		Check: func(context.Context) error {
			if !gw.Healthy() {
				return errors.New("circuit breaker is open")
			}
			return nil
		},
	}
}
