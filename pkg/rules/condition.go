package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPingTimeoutMs is used when a ping condition does not set a timeout.
const DefaultPingTimeoutMs uint32 = 1000

var (
	// ErrUnknownConditionType is returned for condition types outside the known set.
	ErrUnknownConditionType = errors.New("unknown condition type")
	// ErrMissingField is returned when a condition lacks a required field.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidState is returned for unknown interface states.
	ErrInvalidState = errors.New("invalid interface state")
)

// ConditionType identifies the kind of a [Condition].
type ConditionType string

const (
	TypeWifiSSID         ConditionType = "wifi_ssid"
	TypeGatewayMAC       ConditionType = "gateway_mac"
	TypePingTarget       ConditionType = "ping_target"
	TypeInterfaceState   ConditionType = "interface_state"
	TypeTimeWindow       ConditionType = "time_window"
	TypeNetworkAvailable ConditionType = "network_available"
	TypeNot              ConditionType = "not"
)

// AllConditionTypes lists every known [ConditionType].
var AllConditionTypes = []ConditionType{
	TypeWifiSSID,
	TypeGatewayMAC,
	TypePingTarget,
	TypeInterfaceState,
	TypeTimeWindow,
	TypeNetworkAvailable,
	TypeNot,
}

// InterfaceState is the expected state of a network interface.
type InterfaceState string

const (
	StateUp        InterfaceState = "up"
	StateDown      InterfaceState = "down"
	StateCarrier   InterfaceState = "carrier"
	StateNoCarrier InterfaceState = "no_carrier"
)

// AllInterfaceStates lists every known [InterfaceState].
var AllInterfaceStates = []InterfaceState{StateUp, StateDown, StateCarrier, StateNoCarrier}

func (s InterfaceState) valid() bool {
	switch s {
	case StateUp, StateDown, StateCarrier, StateNoCarrier:
		return true
	}

	return false
}

// Condition is a single predicate over the environment.
//
// Only the fields relevant to Type are read; the others are ignored.
type Condition struct {
	// Window is the time window for time_window conditions.
	Window *TimeWindow `json:"window,omitempty" jsonschema:"title=Time Window"`
	// Condition is the negated condition for not conditions.
	Condition *Condition `json:"condition,omitempty" jsonschema:"title=Negated Condition"`
	// Type selects the condition kind.
	Type ConditionType `json:"type" jsonschema:"title=Type,enum=wifi_ssid,enum=gateway_mac,enum=ping_target,enum=interface_state,enum=time_window,enum=network_available,enum=not"`
	// SSID is the Wi-Fi network name, a glob when it contains '*', or a
	// regular expression when Regex is set.
	SSID string `json:"ssid,omitempty" jsonschema:"title=SSID"`
	// MAC is the expected default gateway hardware address.
	MAC string `json:"mac,omitempty" jsonschema:"title=Gateway MAC"`
	// Host is the ping target.
	Host string `json:"host,omitempty" jsonschema:"title=Host"`
	// Interface is the network interface name.
	Interface string `json:"interface,omitempty" jsonschema:"title=Interface"`
	// State is the expected interface state.
	State InterfaceState `json:"state,omitempty" jsonschema:"title=State,enum=up,enum=down,enum=carrier,enum=no_carrier"`
	// TimeoutMs is the ping timeout in milliseconds.
	TimeoutMs uint32 `json:"timeoutMs,omitempty" jsonschema:"title=Timeout (ms)"`
	// Regex interprets SSID as a regular expression.
	Regex bool `json:"regex,omitempty" jsonschema:"title=Regex"`
}

// WifiSSID matches the current SSID literally, or as a glob if it contains '*'.
func WifiSSID(ssid string) Condition {
	return Condition{Type: TypeWifiSSID, SSID: ssid}
}

// WifiSSIDRegex matches the current SSID against a regular expression.
func WifiSSIDRegex(pattern string) Condition {
	return Condition{Type: TypeWifiSSID, SSID: pattern, Regex: true}
}

// GatewayMAC matches the default gateway's hardware address.
func GatewayMAC(mac string) Condition {
	return Condition{Type: TypeGatewayMAC, MAC: mac}
}

// PingTarget matches when host answers a single ping within timeoutMs.
func PingTarget(host string, timeoutMs uint32) Condition {
	return Condition{Type: TypePingTarget, Host: host, TimeoutMs: timeoutMs}
}

// Interface matches when the named interface is in the given state.
func Interface(name string, state InterfaceState) Condition {
	return Condition{Type: TypeInterfaceState, Interface: name, State: state}
}

// Window matches while the local time is inside the window.
func Window(start, end string, days ...string) Condition {
	return Condition{Type: TypeTimeWindow, Window: &TimeWindow{Start: start, End: end, Days: days}}
}

// NetworkAvailable matches when any connectivity is active.
func NetworkAvailable() Condition {
	return Condition{Type: TypeNetworkAvailable}
}

// Not negates c.
func Not(c Condition) Condition {
	return Condition{Type: TypeNot, Condition: &c}
}

// PingTimeout returns the configured ping timeout, rounded down to whole
// seconds with a minimum of one second.
func (c Condition) PingTimeout() time.Duration {
	ms := c.TimeoutMs
	if ms == 0 {
		ms = DefaultPingTimeoutMs
	}

	secs := ms / 1000
	if secs < 1 {
		secs = 1
	}

	return time.Duration(secs) * time.Second
}

// Validate checks that the fields required by the condition's type are set.
func (c Condition) Validate() error {
	switch c.Type {
	case TypeWifiSSID:
		if c.SSID == "" {
			return fmt.Errorf("%s: %w: ssid", c.Type, ErrMissingField)
		}

	case TypeGatewayMAC:
		if c.MAC == "" {
			return fmt.Errorf("%s: %w: mac", c.Type, ErrMissingField)
		}

	case TypePingTarget:
		if c.Host == "" {
			return fmt.Errorf("%s: %w: host", c.Type, ErrMissingField)
		}

	case TypeInterfaceState:
		if c.Interface == "" {
			return fmt.Errorf("%s: %w: interface", c.Type, ErrMissingField)
		}
		if !c.State.valid() {
			return fmt.Errorf("%s: %w: %q", c.Type, ErrInvalidState, c.State)
		}

	case TypeTimeWindow:
		if c.Window == nil {
			return fmt.Errorf("%s: %w: window", c.Type, ErrMissingField)
		}
		if err := c.Window.Validate(); err != nil {
			return fmt.Errorf("%s: %w", c.Type, err)
		}

	case TypeNetworkAvailable:

	case TypeNot:
		if c.Condition == nil {
			return fmt.Errorf("%s: %w: condition", c.Type, ErrMissingField)
		}
		if err := c.Condition.Validate(); err != nil {
			return fmt.Errorf("%s: %w", c.Type, err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownConditionType, c.Type)
	}

	return nil
}

// Description returns a short human-readable summary of the condition.
func (c Condition) Description() string {
	switch c.Type {
	case TypeWifiSSID:
		if c.Regex {
			return "Wi-Fi SSID matches: " + c.SSID
		}

		return "Wi-Fi SSID: " + c.SSID

	case TypeGatewayMAC:
		return "Gateway MAC: " + c.MAC

	case TypePingTarget:
		return "Ping: " + c.Host

	case TypeInterfaceState:
		return fmt.Sprintf("%s is %s", c.Interface, strings.ReplaceAll(string(c.State), "_", " "))

	case TypeTimeWindow:
		if c.Window == nil {
			return "Time: (unset)"
		}

		return "Time: " + c.Window.String()

	case TypeNetworkAvailable:
		return "Network available"

	case TypeNot:
		if c.Condition == nil {
			return "NOT ()"
		}

		return "NOT (" + c.Condition.Description() + ")"
	}

	return fmt.Sprintf("Unknown condition %q", c.Type)
}

func (c Condition) String() string {
	return c.Description()
}
