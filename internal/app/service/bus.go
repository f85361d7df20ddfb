package service

import "github.com/nats-io/nats.go"

// Bus is the minimal pub/sub surface the counter feed needs. Production wraps
// a NATS connection; tests substitute an in-memory implementation.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (BusSubscription, error)
}

// BusSubscription is a cancellable interest registration.
type BusSubscription interface {
	Unsubscribe() error
}

type natsBus struct {
	conn *nats.Conn
}

// NewNATSBus adapts a NATS connection to the Bus interface.
func NewNATSBus(conn *nats.Conn) Bus {
	return &natsBus{conn: conn}
}

func (b *natsBus) Publish(subject string, data []byte) error {
	return b.conn.Publish(subject, data)
}

func (b *natsBus) Subscribe(subject string, handler func(data []byte)) (BusSubscription, error) {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
