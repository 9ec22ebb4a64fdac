package emulator

import (
	"fmt"

	mer "meross_emulator"
)

// SystemAll is the Appliance.System.All reply.
type SystemAll struct {
	All struct {
		System struct {
			Hardware struct {
				UUID string `json:"uuid"`
				Type string `json:"type"`
			} `json:"hardware"`
			Time struct {
				Timestamp int64  `json:"timestamp"`
				Timezone  string `json:"timezone"`
			} `json:"time"`
		} `json:"system"`
		Digest map[string]any `json:"digest"`
	} `json:"all"`
}

// Result is the outcome of handling one request.
type Result struct {
	Method  string
	Payload any
	Commit  Commit
}

// Handle answers a request for namespace at device time now.
func (d *Device) Handle(now int64, namespace, method string) (Result, error) {
	if method != mer.MethodGet {
		switch namespace {
		case mer.NSSystemAll, mer.NSControlElectricity, mer.NSControlConsumptionX:
			return Result{}, fmt.Errorf("%s %s: %w", method, namespace, ErrMethodNotAllowed)
		}
		return Result{}, fmt.Errorf("%s: %w", namespace, ErrNamespaceNotSupported)
	}

	switch namespace {
	case mer.NSSystemAll:
		return Result{Method: mer.MethodGetAck, Payload: d.systemAll(now)}, nil
	case mer.NSControlElectricity:
		p, err := d.Electricity()
		if err != nil {
			return Result{}, err
		}
		return Result{Method: mer.MethodGetAck, Payload: p}, nil
	case mer.NSControlConsumptionX:
		p, c, err := d.ConsumptionX(now)
		if err != nil {
			return Result{}, err
		}
		return Result{Method: mer.MethodGetAck, Payload: p, Commit: c}, nil
	default:
		return Result{}, fmt.Errorf("%s: %w", namespace, ErrNamespaceNotSupported)
	}
}

func (d *Device) systemAll(now int64) SystemAll {
	var s SystemAll
	s.All.System.Hardware.UUID = d.desc.UUID
	s.All.System.Hardware.Type = d.desc.Type
	s.All.System.Time.Timestamp = now
	s.All.System.Time.Timezone = d.desc.Timezone
	s.All.Digest = map[string]any{}
	return s
}
