package meross_emulator

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
)

// Namespaces served by the emulated device.
const (
	NSSystemAll           = "Appliance.System.All"
	NSControlElectricity  = "Appliance.Control.Electricity"
	NSControlConsumptionX = "Appliance.Control.ConsumptionX"
)

// Message methods.
const (
	MethodGet    = "GET"
	MethodGetAck = "GETACK"
	MethodSet    = "SET"
	MethodSetAck = "SETACK"
	MethodPush   = "PUSH"
	MethodError  = "ERROR"
)

// Error codes carried in an ERROR reply payload.
const (
	ErrorCodeSign             = 5001
	ErrorCodeNotSupported     = 5000
	ErrorCodeMethodNotAllowed = 5002
)

const (
	topicRequestFmt  = "/appliance/%s/subject"
	topicResponseFmt = "/appliance/%s/publish"

	// TopicRequestWildcard matches every device request topic.
	TopicRequestWildcard = "/appliance/+/subject"
)

// Sign computes the message signature: md5(messageId + key + timestamp) in hex.
func Sign(messageID, key string, timestamp int64) string {
	sum := md5.Sum([]byte(messageID + key + strconv.FormatInt(timestamp, 10)))
	return hex.EncodeToString(sum[:])
}
