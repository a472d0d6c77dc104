package events

import (
	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
)

// TailBatchConsumer prints every event it receives.
type TailBatchConsumer struct {
}

func NewTailBatchConsumer() *TailBatchConsumer {
	return &TailBatchConsumer{}
}

func (c *TailBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		event, err := Decode([]byte(payload))
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		pretty.Println(event)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
