package telemetry

import (
	"fmt"
	"io"

	"github.com/kilianp07/sensorlog/core/model"
)

// Separator ends every reading block on the console.
const Separator = "--------------------------"

// WriteReading writes the console block for one reading:
//
//	收到主题 <topic> 的消息:
//	值: <value>
//	单位: <unit>
//	--------------------------
func WriteReading(w io.Writer, topic string, r model.SensorReading) error {
	_, err := fmt.Fprintf(w, "收到主题 %s 的消息:\n值: %s\n单位: %s\n%s\n", topic, r.Value.String(), r.Unit, Separator)
	return err
}
