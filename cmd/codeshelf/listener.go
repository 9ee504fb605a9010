package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/logging"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/mqtt"
)

// sourceMQTT is the import source recorded for files received over MQTT.
const sourceMQTT = "mqtt"

// broker is the part of *mqtt.Client the import listener uses.
type broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// importReply is published on the result topic after every MQTT import.
type importReply struct {
	Facility string                    `json:"facility"`
	Error    string                    `json:"error,omitempty"`
	Result   *aisleimport.ImportResult `json:"result,omitempty"`
}

// importListener applies aisle files published to
// <prefix>/facility/<id>/import/aisles and reports each outcome on
// <prefix>/facility/<id>/import/result.
type importListener struct {
	broker   broker
	topics   mqtt.Topics
	qos      byte
	importer *aisleimport.Service
	log      *logging.Logger
}

// Run subscribes and blocks until ctx is cancelled.
func (l *importListener) Run(ctx context.Context) error {
	topic := l.topics.AllImportRequests()
	if err := l.broker.Subscribe(topic, l.qos, l.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	l.log.Info("listening for aisle imports", "topic", topic)

	<-ctx.Done()

	if err := l.broker.Unsubscribe(topic); err != nil {
		l.log.Warn("unsubscribing from imports", "topic", topic, "error", err)
	}
	return nil
}

// handle runs on a paho goroutine. Imports into the same facility are
// serialised by the location store.
func (l *importListener) handle(topic string, payload []byte) error {
	facility, ok := l.topics.FacilityFromTopic(topic)
	if !ok || topic != l.topics.ImportAisles(facility) {
		return fmt.Errorf("import request on unexpected topic %q", topic)
	}

	reply := importReply{Facility: facility}
	res, err := l.importer.ImportCSV(context.Background(), facility, sourceMQTT, bytes.NewReader(payload))
	if err != nil {
		reply.Error = err.Error()
	} else {
		reply.Result = res
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("encoding import result: %w", err)
	}
	if err := l.broker.Publish(l.topics.ImportResult(facility), data, l.qos, false); err != nil {
		return fmt.Errorf("publishing import result: %w", err)
	}
	return nil
}
