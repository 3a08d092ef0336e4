package service

import (
	"strings"

	"github.com/greencart/internal/constants"

	"github.com/google/uuid"
)

const trackingNumberAttempts = 3

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// isTerminalStatus COMPLETED 与 CANCELLED 不再流转
func isTerminalStatus(status string) bool {
	return len(allowedTransitions[status]) == 0
}

// generateTrackingNumber TRACK- 加 UUID 前 10 位大写十六进制
func generateTrackingNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return constants.TrackingNumberPrefix + strings.ToUpper(hex[:10])
}
