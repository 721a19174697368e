// internal/netclass/doc.go

// Package netclass classifies raw connectivity readings into the seven
// network classes exposed to consumers (UNREACHABLE, WIFI, MOBILE_2G,
// MOBILE_3G, MOBILE_4G, MOBILE_5G, MOBILE_OTHER).
//
// The class string is the wire value; Class.Code is the register value.
package netclass
