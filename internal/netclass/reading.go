// internal/netclass/reading.go
package netclass

import (
	"fmt"
	"strings"
)

// InterfaceKind is the active interface type as reported by the OS.
// Values outside the declared constants are treated as unknown.
type InterfaceKind int

const (
	KindNone InterfaceKind = iota
	KindWiFi
	KindCellular
)

func (k InterfaceKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindWiFi:
		return "wifi"
	case KindCellular:
		return "cellular"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseInterfaceKind parses the lower-case names produced by String.
func ParseInterfaceKind(s string) (InterfaceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return KindNone, nil
	case "wifi":
		return KindWiFi, nil
	case "cellular":
		return KindCellular, nil
	}
	return KindNone, fmt.Errorf("netclass: unknown interface kind %q", s)
}

// Radio access technology codes as reported by the cellular radio.
const (
	RATEdge         = "EDGE"
	RATGPRS         = "GPRS"
	RATCDMA1x       = "CDMA1x"
	RATHSDPA        = "HSDPA"
	RATWCDMA        = "WCDMA"
	RATHSUPA        = "HSUPA"
	RATCDMAEVDORev0 = "CDMAEVDORev0"
	RATCDMAEVDORevA = "CDMAEVDORevA"
	RATCDMAEVDORevB = "CDMAEVDORevB"
	RATeHRPD        = "eHRPD"
	RATLTE          = "LTE"
	RATNRNSA        = "NRNSA"
	RATNR           = "NR"
)

// ratPrefix is carried by the raw constant names some platforms report.
const ratPrefix = "CTRadioAccessTechnology"

// Reading is one immutable connectivity snapshot.
// An empty RAT means the radio reported no access technology.
type Reading struct {
	Interface InterfaceKind
	RAT       string
}

// HasRAT reports whether a radio access technology code is present.
func (r Reading) HasRAT() bool { return NormalizeRAT(r.RAT) != "" }

func (r Reading) String() string {
	if r.Interface == KindCellular && r.HasRAT() {
		return r.Interface.String() + "/" + NormalizeRAT(r.RAT)
	}
	return r.Interface.String()
}

// NormalizeRAT trims whitespace and the platform constant prefix.
// Case is preserved: codes such as "eHRPD" are case-sensitive.
func NormalizeRAT(code string) string {
	code = strings.TrimSpace(code)
	return strings.TrimPrefix(code, ratPrefix)
}
