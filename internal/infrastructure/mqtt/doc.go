// Package mqtt publishes simulator output to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retained-message control
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	{prefix}/device/{id}/state   retained, one per appliance
//	{prefix}/consumo             full snapshot every tick
//	{prefix}/system/status       online/offline, also the LWT
//
// The prefix defaults to "appliancesim".
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
//	err = client.PublishRetained(topics.DeviceState("NEV-001"), body)
package mqtt
