// Package mqtt connects the Codeshelf service to an MQTT broker.
//
// The service uses the broker in two directions:
//
//   - it publishes each finalized aisle's LED map as a retained message on
//     {prefix}/facility/{facility}/aisle/{aisle}/leds, and controller
//     assignments on {prefix}/facility/{facility}/controller/{id};
//   - it accepts aisle definition CSV on
//     {prefix}/facility/{facility}/import/aisles and reports the outcome on
//     {prefix}/facility/{facility}/import/result.
//
// A retained status message on {prefix}/system/status tracks whether the
// service is online, with a Last Will for unexpected disconnects.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.AllImportRequests(), 1, handler)
package mqtt
