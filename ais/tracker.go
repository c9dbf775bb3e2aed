package ais

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/routeursea/sea-server/grid"
)

// Tracker keeps the latest reported position per vessel from a NATS subject.
// Reports are JSON encoded Vessels. Snapshots handed out are copies, the
// tracker keeps updating behind them.
type Tracker struct {
	conn  *nats.Conn
	lock  sync.RWMutex
	fleet map[string]Vessel
}

func NewTracker(url, subject string) (*Tracker, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats %s: %w", url, err)
	}

	t := &Tracker{conn: conn, fleet: make(map[string]Vessel)}

	if _, err := conn.Subscribe(subject, t.handle); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}

	log.Infof("Tracking vessel positions on '%s'", subject)

	return t, nil
}

func (t *Tracker) handle(msg *nats.Msg) {
	var v Vessel
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		log.WithError(err).Warn("Dropping malformed position report")
		return
	}
	if v.Name == "" {
		return
	}

	t.lock.Lock()
	t.fleet[v.Name] = v
	t.lock.Unlock()
}

// Vessels returns the tracked vessels inside b, ordered by name.
func (t *Tracker) Vessels(b grid.Bounds) []Vessel {
	t.lock.RLock()
	defer t.lock.RUnlock()

	vessels := make([]Vessel, 0, len(t.fleet))
	for _, v := range t.fleet {
		if b.Contains(v.Position()) {
			vessels = append(vessels, v)
		}
	}
	sort.Slice(vessels, func(i, j int) bool { return vessels[i].Name < vessels[j].Name })

	return vessels
}

func (t *Tracker) Close() {
	if err := t.conn.Drain(); err != nil {
		log.WithError(err).Warn("Draining nats connection")
	}
}
