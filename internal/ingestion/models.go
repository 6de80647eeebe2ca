package ingestion

import (
	"encoding/json"
	"errors"
	"strings"
)

// AlarmMessage is the push notification the telemetry platform publishes
// when a device raises or clears an alarm.
type AlarmMessage struct {
	IDUser      string `json:"id_user"`
	PackageName string `json:"package_name"`
	AlarmType   string `json:"alarm_type"`
	Value       string `json:"value"`
	Timestamp   string `json:"timestamp"`
}

// ParseAlarmMessage decodes an alarm payload and rejects messages that
// cannot be routed to a user.
func ParseAlarmMessage(payload []byte) (*AlarmMessage, error) {
	var msg AlarmMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}

	msg.IDUser = strings.TrimSpace(msg.IDUser)
	msg.PackageName = strings.TrimSpace(msg.PackageName)

	if msg.IDUser == "" {
		return nil, errors.New("alarm message has no id_user")
	}

	return &msg, nil
}
