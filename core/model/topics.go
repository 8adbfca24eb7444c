package model

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TopicLight       = "home/sensor/light"
	TopicSoil        = "home/sensor/soil"
	TopicTemperature = "home/sensor/temperature"
	TopicHumidity    = "home/sensor/humidity"
	TopicPressure    = "home/sensor/pressure"
	TopicAltitude    = "home/sensor/altitude"
	TopicBMPTemp     = "home/sensor/bmp_temp"
)

// TopicList is the ordered set of topics subscribed on every connection.
type TopicList []string

// DefaultTopics returns the sensor topics published by the home nodes:
// the photoresistor, soil moisture probe, DHT11 and BMP180.
func DefaultTopics() TopicList {
	return TopicList{
		TopicLight,
		TopicSoil,
		TopicTemperature,
		TopicHumidity,
		TopicPressure,
		TopicAltitude,
		TopicBMPTemp,
	}
}

// Validate rejects empty lists, blank topics and duplicates.
func (l TopicList) Validate() error {
	if len(l) == 0 {
		return errors.New("topic list is empty")
	}
	seen := make(map[string]struct{}, len(l))
	for i, t := range l {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("topic %d is empty", i)
		}
		if _, ok := seen[t]; ok {
			return fmt.Errorf("duplicate topic %s", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}
