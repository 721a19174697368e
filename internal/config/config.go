// internal/config/config.go
package config

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Watcher WatcherConfig `yaml:"watcher"`
	Publish PublishConfig `yaml:"publish"`
	History HistoryConfig `yaml:"history"`
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
}

// ---- SOURCE ----

const (
	SourceModbus  = "modbus"
	SourceNetlink = "netlink"
)

type SourceConfig struct {
	Kind    string        `yaml:"kind"` // modbus | netlink
	Modbus  ModbusSource  `yaml:"modbus"`
	Netlink NetlinkSource `yaml:"netlink"`
}

type ModbusSource struct {
	Mode     string `yaml:"mode"`     // tcp | rtu
	Endpoint string `yaml:"endpoint"` // tcp
	Device   string `yaml:"device"`   // rtu
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	UnitID     uint8 `yaml:"unit_id"`
	TimeoutMs  int   `yaml:"timeout_ms"`
	IntervalMs int   `yaml:"interval_ms"`

	Registers RegisterMap `yaml:"registers"`
}

// RegisterMap is holding-register geometry on the router.
type RegisterMap struct {
	Interface uint16 `yaml:"interface"`
	RAT       uint16 `yaml:"rat"`
	RATLength uint16 `yaml:"rat_length"` // registers, 2 ASCII chars each
}

type NetlinkSource struct {
	SysfsRoot   string `yaml:"sysfs_root"`
	RATFile     string `yaml:"rat_file"`
	WiredAsWiFi *bool  `yaml:"wired_as_wifi"` // default true
}

// ---- WATCHER ----

type WatcherConfig struct {
	Dedup  bool `yaml:"dedup"`
	Buffer int  `yaml:"buffer"`
}

// ---- PUBLISH (optional status block over Modbus) ----

type PublishConfig struct {
	Endpoint   string  `yaml:"endpoint"`
	UnitID     uint8   `yaml:"unit_id"`
	StatusSlot *uint16 `yaml:"status_slot"` // opt-in
	DeviceName string  `yaml:"device_name"`
	TimeoutMs  int     `yaml:"timeout_ms"`
}

// Enabled reports whether the status block is opted in.
func (p PublishConfig) Enabled() bool { return p.StatusSlot != nil }

// ---- HISTORY ----

type HistoryConfig struct {
	Path string `yaml:"path"` // empty disables history
}

// ---- API ----

type APIConfig struct {
	Listen string `yaml:"listen"` // empty disables the HTTP API
}

// ---- LOG ----

type LogConfig struct {
	Level      string `yaml:"level"`    // debug | info | warn | error
	Encoding   string `yaml:"encoding"` // json | console
	File       string `yaml:"file"`     // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}
