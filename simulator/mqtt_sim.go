package main

import paho "github.com/eclipse/paho.mqtt.golang"

// publisher is the part of the paho client the simulated peers use.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

func newMQTTClient(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}
