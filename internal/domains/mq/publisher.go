package mq

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher pushes JSON payloads to the message broker.
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

func NewPublisher(conn *nats.Conn, subjectPrefix string) *Publisher {
	return &Publisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (p *Publisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Publish: %w", err)
	}

	if err = p.conn.Publish(fmt.Sprintf("%s.%s", p.subjectPrefix, subject), data); err != nil {
		return fmt.Errorf("Publish: %w", err)
	}

	return nil
}
