package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/core/telemetry"
)

// maxPayload bounds the payload read from stdin.
const maxPayload = 1 << 20

var decodeTopic string

var decodeCmd = &cobra.Command{
	Use:   "decode [payload]",
	Short: "Decode one sensor payload and print it like the logger would",
	Long: `Decode a JSON payload of the form {"value": <number>, "unit": <string>}.
The payload is taken from the argument or, when absent, from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeTopic, "topic", "t", model.TopicTemperature, "topic printed in the header line")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	var payload []byte
	if len(args) == 1 {
		payload = []byte(args[0])
	} else {
		b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxPayload))
		if err != nil {
			return err
		}
		payload = b
	}
	r, err := model.DecodeReading(payload)
	if err != nil {
		return &telemetry.DecodeError{Topic: decodeTopic, Err: err}
	}
	return telemetry.WriteReading(cmd.OutOrStdout(), decodeTopic, r)
}
