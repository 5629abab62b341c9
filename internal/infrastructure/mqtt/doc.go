// Package mqtt publishes hub device state to an MQTT broker.
//
// Publishing is one-way: the hub never subscribes and never accepts device
// commands over MQTT. State is retained per device so a dashboard that
// connects late still sees every device.
//
//	grayhub/state/{kind}/{device}   retained JSON state
//	grayhub/event/{kind}/{device}   device events
//	grayhub/system/status           online/offline, with LWT
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceState("LIGHT", "living-room")
//	err = client.PublishJSON(topic, state, true)
//
// Connect fails fast when the broker is unreachable; once connected, paho
// reconnects with backoff between reconnect.initial_delay and
// reconnect.max_delay.
package mqtt
