// Package telemetry fans device events out to the optional sinks: the
// SQLite journal, MQTT, InfluxDB and Prometheus.
//
// The Dispatcher is the device.Listener installed on the registry. Its
// HandleEvent never blocks: events go into a bounded queue and a single
// worker delivers them to each sink in order. When the queue is full the
// event is dropped and counted.
//
//	disp := telemetry.NewDispatcher(256, logger,
//	    telemetry.NewJournalSink(journal),
//	    telemetry.NewMQTTSink(mqttClient),
//	    telemetry.NewInfluxSink(influxClient),
//	    telemetry.ListenerSink("metrics", m),
//	)
//	disp.Start(ctx)
//	defer disp.Close()
//	registry.SetListener(disp)
//
// Sinks run on the worker goroutine and must not call into the device
// registry, which may be holding its lock while emitting.
package telemetry
