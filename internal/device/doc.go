// Package device provides the simulated devices and the Device Registry for
// the Gray Logic Hub.
//
// The registry is the ordered catalogue of every appliance in the home:
// lights, plugs, speakers, thermostats, radiator valves and climate sensors.
// Each device has on/off state, its own attributes, an optional countdown
// timer and, for heating and plugs, a time-of-day schedule.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           Device Registry                           │
//	│                                                                     │
//	│  ┌──────────────────┐    ┌──────────────────┐    ┌───────────────┐  │
//	│  │     Registry     │    │  FileRepository  │    │    Session    │  │
//	│  │   (registry.go)  │───▶│  (repository.go) │    │ (session.go)  │  │
//	│  │                  │    │                  │    │               │  │
//	│  │ • ordered slice  │    │ • pipe records   │    │ • device menu │  │
//	│  │ • sort / lookup  │    │ • atomic rewrite │    │ • rename      │  │
//	│  │ • one-click      │    │ • schedule lines │    │ • delete      │  │
//	│  └──────────────────┘    └──────────────────┘    └───────────────┘  │
//	│           │                                                         │
//	│           ▼                                                         │
//	│  ┌──────────────────────────────────────────────────────────────┐   │
//	│  │ Light · Plug · Speaker · Thermostat · RadiatorValve · Sensor │   │
//	│  │      (Timer goroutine per device, Schedule, energy meter)    │   │
//	│  └──────────────────────────────────────────────────────────────┘   │
//	└───────────│─────────────────────────────────────────────────────────┘
//	            │ Listener
//	            ▼
//	    telemetry (journal, MQTT, InfluxDB, metrics)
//
// # Store Format
//
// One record per line, fields separated by '|':
//
//	LIGHT|Lamp|1|80
//	PLUG|Fridge|1|12.5
//	SPEAKER|Kitchen|0|50|1
//	THERMOSTAT|Hall|0
//	RADIATOR|Bedroom|1
//	TEMPHUMIDITY|Attic|1|3.5
//	Fridge|7|30|ON
//
// Device records come first; schedule lines (name|hour|minute|ON|OFF)
// follow and attach to the first schedulable device with that exact name.
//
// # Usage
//
//	repo := device.NewFileRepository("data/devices.txt")
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//	registry.SetListener(sink)
//
//	if err := registry.Load(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    registry.Close()
//	    _ = registry.Save(context.Background())
//	}()
//
//	lamp, _ := registry.AddDevice(device.KindLight, "Lamp")
//	lamp.PrimaryToggle()
//	fmt.Println(registry.ListQuickViews())
//
// # Thread Safety
//
// Registry methods and Session.Apply serialise on the registry mutex. Each
// running timer owns one goroutine that only touches its device's atomics
// and emits a single expiry event.
package device
