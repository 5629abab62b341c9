// Package influxdb writes hub energy and climate history to InfluxDB.
//
// Two measurements are written:
//
//	energy   tags: device, kind   fields: energy_kwh, total_kwh
//	climate  tags: device         fields: temperature_c, humidity_pct
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval; failures surface through SetOnError.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteEnergy("Fridge", "PLUG", 0.5, 12.5, time.Now())
package influxdb
