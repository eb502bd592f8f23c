// Package tracking builds click events and delivers them to the collector.
package tracking

import (
	"fmt"
	"time"
)

// AdditionalData carries the pattern and style shown when the tap happened.
type AdditionalData struct {
	Pattern string `json:"pattern"`
	Style   string `json:"style"`
}

// ClickEvent is the record posted to the collector for one tap. Field order
// matches the wire format.
type ClickEvent struct {
	AdID           string         `json:"ad_id"`
	AdType         string         `json:"ad_type"`
	Timestamp      int64          `json:"timestamp"` // milliseconds since the Unix epoch
	DeviceID       string         `json:"device_id"`
	AdditionalData AdditionalData `json:"additional_data"`
}

// NewClickEvent builds an event stamped with at. Ad ID, ad type and device ID
// are required.
func NewClickEvent(adID, adType, deviceID, pattern, style string, at time.Time) (ClickEvent, error) {
	switch {
	case adID == "":
		return ClickEvent{}, fmt.Errorf("%w: ad_id", ErrMissingField)
	case adType == "":
		return ClickEvent{}, fmt.Errorf("%w: ad_type", ErrMissingField)
	case deviceID == "":
		return ClickEvent{}, fmt.Errorf("%w: device_id", ErrMissingField)
	}
	if at.IsZero() {
		at = time.Now()
	}
	return ClickEvent{
		AdID:      adID,
		AdType:    adType,
		Timestamp: at.UnixMilli(),
		DeviceID:  deviceID,
		AdditionalData: AdditionalData{
			Pattern: pattern,
			Style:   style,
		},
	}, nil
}

// Validate checks the fields a collector requires.
func (e ClickEvent) Validate() error {
	switch {
	case e.AdID == "":
		return fmt.Errorf("%w: ad_id", ErrMissingField)
	case e.AdType == "":
		return fmt.Errorf("%w: ad_type", ErrMissingField)
	case e.DeviceID == "":
		return fmt.Errorf("%w: device_id", ErrMissingField)
	case e.Timestamp <= 0:
		return fmt.Errorf("%w: timestamp", ErrMissingField)
	}
	return nil
}

// Time returns the event timestamp as a time.Time.
func (e ClickEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
