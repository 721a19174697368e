// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTimeoutMs   = 1000
	DefaultIntervalMs  = 1000
	DefaultBaudRate    = 9600
	DefaultDataBits    = 8
	DefaultStopBits    = 1
	DefaultParity      = "N"
	DefaultSysfsRoot   = "/sys"
	DefaultBuffer      = 16
	DefaultLogLevel    = "info"
	DefaultLogEncoding = "json"
	DefaultMaxSizeMB   = 10

	deviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// SOURCE
	// ------------------------------------------------------------

	m := &cfg.Source.Modbus
	if m.Mode == "" {
		m.Mode = "tcp"
	}
	if m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultTimeoutMs
	}
	if m.IntervalMs == 0 {
		m.IntervalMs = DefaultIntervalMs
	}
	if m.Mode == "rtu" {
		if m.BaudRate == 0 {
			m.BaudRate = DefaultBaudRate
		}
		if m.DataBits == 0 {
			m.DataBits = DefaultDataBits
		}
		if m.StopBits == 0 {
			m.StopBits = DefaultStopBits
		}
		if m.Parity == "" {
			m.Parity = DefaultParity
		}
	}

	n := &cfg.Source.Netlink
	if n.SysfsRoot == "" {
		n.SysfsRoot = DefaultSysfsRoot
	}
	if n.WiredAsWiFi == nil {
		on := true
		n.WiredAsWiFi = &on
	}

	// ------------------------------------------------------------
	// WATCHER
	// ------------------------------------------------------------

	if cfg.Watcher.Buffer == 0 {
		cfg.Watcher.Buffer = DefaultBuffer
	}

	// ------------------------------------------------------------
	// PUBLISH
	// ------------------------------------------------------------

	if cfg.Publish.Enabled() {
		// ASCII already validated; truncate to max 16 characters
		if len(cfg.Publish.DeviceName) > deviceNameMaxChars {
			cfg.Publish.DeviceName = cfg.Publish.DeviceName[:deviceNameMaxChars]
		}
		if cfg.Publish.TimeoutMs == 0 {
			cfg.Publish.TimeoutMs = DefaultTimeoutMs
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = DefaultLogEncoding
	}
	if cfg.Log.File != "" && cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = DefaultMaxSizeMB
	}
}
