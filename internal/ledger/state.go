package ledger

import (
	"errors"
	"fmt"

	"github.com/qs3c/workshop_server/internal/model"
)

type Event string

const (
	EventApprove    Event = "approve"
	EventTransfer   Event = "transfer"
	EventRefund     Event = "refund"
	EventReactivate Event = "reactivate"
	EventComplete   Event = "complete"
)

var ErrInvalidTransition = errors.New("invalid subscription transition")

// transitions [from][event] -> to
var transitions = map[string]map[Event]string{
	model.StatusPending: {
		EventApprove: model.StatusActive,
	},
	model.StatusActive: {
		EventTransfer: model.StatusTransferred,
		EventRefund:   model.StatusRefunded,
		EventComplete: model.StatusCompleted,
	},
	model.StatusRefunded: {
		EventReactivate: model.StatusActive,
	},
}

// Next 返回 from 状态在 event 下的目标状态
func Next(from string, event Event) (string, error) {
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, from)
}

// CanFire 判断事件在当前状态是否可用
func CanFire(from string, event Event) bool {
	_, err := Next(from, event)
	return err == nil
}

var allEvents = []Event{EventApprove, EventTransfer, EventRefund, EventReactivate, EventComplete}

// AvailableEvents 当前状态下可执行的事件，按固定顺序返回
func AvailableEvents(from string) []Event {
	events := make([]Event, 0, len(transitions[from]))
	for _, e := range allEvents {
		if CanFire(from, e) {
			events = append(events, e)
		}
	}
	return events
}

// InitialStatus 新订阅的初始状态与审批标记
func InitialStatus(autoApprove bool) (string, bool) {
	if autoApprove {
		return model.StatusActive, true
	}
	return model.StatusPending, false
}
