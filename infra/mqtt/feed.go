package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/logger"
	"github.com/muhirwa45/E-moto/core/model"
)

// Subscriber registers payload handlers on topics.
type Subscriber interface {
	Subscribe(topic string, handler func(payload []byte)) error
}

// FixSink receives decoded sensor readings.
type FixSink interface {
	SetLocation(c geo.Coordinates) error
	SetHeading(h model.Heading)
}

// SensorFeed decodes a device's location and heading messages into a FixSink.
type SensorFeed struct {
	deviceID string
	sink     FixSink
	logger   logger.Logger
}

// NewSensorFeed creates a feed for deviceID.
func NewSensorFeed(deviceID string, sink FixSink, log logger.Logger) (*SensorFeed, error) {
	if deviceID == "" || sink == nil {
		return nil, fmt.Errorf("sensor feed: device id and sink are required")
	}
	return &SensorFeed{deviceID: deviceID, sink: sink, logger: logger.OrNop(log)}, nil
}

// Start subscribes to the device topics.
func (f *SensorFeed) Start(sub Subscriber) error {
	if err := sub.Subscribe(LocationTopic(f.deviceID), f.HandleLocation); err != nil {
		return fmt.Errorf("subscribe location: %w", err)
	}
	if err := sub.Subscribe(HeadingTopic(f.deviceID), f.HandleHeading); err != nil {
		return fmt.Errorf("subscribe heading: %w", err)
	}
	return nil
}

// HandleLocation decodes {"lat":..,"lng":..}.
func (f *SensorFeed) HandleLocation(payload []byte) {
	var c geo.Coordinates
	if err := json.Unmarshal(payload, &c); err != nil {
		f.logger.Warnf("invalid location from %s: %v", f.deviceID, err)
		return
	}
	if err := f.sink.SetLocation(c); err != nil {
		f.logger.Warnf("rejected location from %s: %v", f.deviceID, err)
	}
}

// orientation is the device orientation payload. A null alpha means the
// compass is not calibrated yet; calibrated is optional.
type orientation struct {
	Alpha      *float64 `json:"alpha"`
	Beta       float64  `json:"beta"`
	Gamma      float64  `json:"gamma"`
	Calibrated *bool    `json:"calibrated"`
}

// HandleHeading decodes {"alpha":..,"beta":..,"gamma":..}.
func (f *SensorFeed) HandleHeading(payload []byte) {
	var o orientation
	if err := json.Unmarshal(payload, &o); err != nil {
		f.logger.Warnf("invalid heading from %s: %v", f.deviceID, err)
		return
	}
	h := model.Heading{Beta: o.Beta, Gamma: o.Gamma}
	if o.Alpha != nil && (o.Calibrated == nil || *o.Calibrated) {
		h.Alpha = geo.NormalizeAngle(*o.Alpha)
		if h.Alpha < 0 {
			h.Alpha += 360
		}
		h.Calibrated = true
	}
	f.sink.SetHeading(h)
}
