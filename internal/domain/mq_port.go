package domain

// Message is a raw broker message. Ingestion consumes order events through
// SubscriberPort; paid-commission and ops alerts go out through PublisherPort.
type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}

type SubscriberPort interface {
	Subscribe(topic, groupID string) (<-chan Message, error)
}
