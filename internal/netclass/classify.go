// internal/netclass/classify.go
package netclass

// ratClasses maps cellular access technologies to their class.
// Codes not listed degrade to MobileOther.
var ratClasses = map[string]Class{
	RATEdge:   Mobile2G,
	RATGPRS:   Mobile2G,
	RATCDMA1x: Mobile2G,

	RATHSDPA:        Mobile3G,
	RATWCDMA:        Mobile3G,
	RATHSUPA:        Mobile3G,
	RATCDMAEVDORev0: Mobile3G,
	RATCDMAEVDORevA: Mobile3G,
	RATCDMAEVDORevB: Mobile3G,
	RATeHRPD:        Mobile3G,

	RATLTE: Mobile4G,

	RATNRNSA: Mobile5G,
	RATNR:    Mobile5G,
}

// Classify maps a reading to its class.
// Total and pure: no state, no failure.
func Classify(r Reading) Class {
	switch r.Interface {
	case KindWiFi:
		return WiFi
	case KindNone:
		return Unreachable
	case KindCellular:
		code := NormalizeRAT(r.RAT)
		if code == "" {
			return MobileOther
		}
		if c, ok := ratClasses[code]; ok {
			return c
		}
		return MobileOther
	default:
		return Unreachable
	}
}
