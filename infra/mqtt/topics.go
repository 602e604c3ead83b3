package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// DispatchTopic is where a station receives delivery orders.
func DispatchTopic(stationID int) string {
	return fmt.Sprintf("station/%d/dispatch", stationID)
}

// DefaultAckTopic matches the acknowledgments of every station.
const DefaultAckTopic = "station/+/ack"

// TrackingTopic carries the vehicle position of a delivery.
func TrackingTopic(deliveryID string) string {
	return "delivery/" + deliveryID + "/tracking"
}

// StateTopic carries lifecycle transitions of a delivery.
func StateTopic(deliveryID string) string {
	return "delivery/" + deliveryID + "/state"
}

// LocationTopic and HeadingTopic carry a rider device's sensor readings.
func LocationTopic(deviceID string) string { return "device/" + deviceID + "/location" }

func HeadingTopic(deviceID string) string { return "device/" + deviceID + "/heading" }

// StationFromTopic extracts the station id of a station/<id>/... topic.
func StationFromTopic(topic string) (int, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[0] != "station" {
		return 0, false
	}
	id, err := strconv.Atoi(parts[1])
	return id, err == nil
}
