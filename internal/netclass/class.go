// internal/netclass/class.go
package netclass

import "fmt"

// Class is the connectivity category reported to consumers.
// The string value is the wire value and MUST NOT change.
type Class string

const (
	Unreachable Class = "UNREACHABLE"
	Mobile2G    Class = "MOBILE_2G"
	Mobile3G    Class = "MOBILE_3G"
	WiFi        Class = "WIFI"
	Mobile4G    Class = "MOBILE_4G"
	Mobile5G    Class = "MOBILE_5G"
	MobileOther Class = "MOBILE_OTHER"
)

// byCode is ordered by register code.
// 0:unreachable 1:2G 2:3G 3:wifi 4:4G 5:5G 6:other mobile
var byCode = [...]Class{
	Unreachable,
	Mobile2G,
	Mobile3G,
	WiFi,
	Mobile4G,
	Mobile5G,
	MobileOther,
}

// Classes returns every class in code order.
func Classes() []Class {
	out := make([]Class, len(byCode))
	copy(out, byCode[:])
	return out
}

func (c Class) String() string { return string(c) }

// Code returns the numeric code used in register encodings.
// Unknown classes encode as Unreachable.
func (c Class) Code() uint16 {
	for i, k := range byCode {
		if k == c {
			return uint16(i)
		}
	}
	return 0
}

// Valid reports whether c is one of the seven known classes.
func (c Class) Valid() bool {
	for _, k := range byCode {
		if k == c {
			return true
		}
	}
	return false
}

// ClassFromCode is the inverse of Class.Code.
func ClassFromCode(code uint16) (Class, error) {
	if int(code) >= len(byCode) {
		return Unreachable, fmt.Errorf("netclass: unknown class code %d", code)
	}
	return byCode[code], nil
}

// ParseClass accepts the exact wire value.
func ParseClass(s string) (Class, error) {
	c := Class(s)
	if !c.Valid() {
		return Unreachable, fmt.Errorf("netclass: unknown class %q", s)
	}
	return c, nil
}
