// internal/source/netlink/sysfs.go
package netlink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/netclass"
)

// Config is the minimal runtime config the source needs.
type Config struct {
	// SysfsRoot is the sysfs mount point. Default "/sys".
	SysfsRoot string
	// RATFile holds the current radio access technology code, written by
	// the modem manager. Missing or empty means no code reported.
	RATFile string
	// WiredAsWiFi reports an active wired interface as WiFi.
	WiredAsWiFi bool
}

// link is one network interface as seen in sysfs.
type link struct {
	name string
	kind linkKind
}

type linkKind int

const (
	linkWired linkKind = iota
	linkWireless
	linkCellular
)

// ww covers both wwanN and systemd predictable names (wwp0s20f0u6).
var cellularPrefixes = []string{"ww", "rmnet"}

// Source reads connectivity from sysfs and is notified through rtnetlink.
type Source struct {
	cfg Config
	log *zap.Logger

	mu      sync.Mutex // guards the notifier fields in the platform file
	running bool
	stopped chan struct{}
	done    chan struct{}
	fd      int
}

// New creates a source. It does not touch the OS until used.
func New(cfg Config, log *zap.Logger) *Source {
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = "/sys"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{cfg: cfg, log: log, fd: -1}
}

// Reading scans active interfaces.
// Precedence: wireless, then wired (if reported as WiFi), then cellular.
func (s *Source) Reading() (netclass.Reading, error) {
	links, err := s.activeLinks()
	if err != nil {
		return netclass.Reading{}, err
	}

	var wired, cellular bool
	for _, l := range links {
		switch l.kind {
		case linkWireless:
			return netclass.Reading{Interface: netclass.KindWiFi}, nil
		case linkWired:
			wired = true
		case linkCellular:
			cellular = true
		}
	}

	if wired && s.cfg.WiredAsWiFi {
		return netclass.Reading{Interface: netclass.KindWiFi}, nil
	}
	if cellular {
		return netclass.Reading{Interface: netclass.KindCellular, RAT: s.readRAT()}, nil
	}
	return netclass.Reading{Interface: netclass.KindNone}, nil
}

func (s *Source) activeLinks() ([]link, error) {
	base := filepath.Join(s.cfg.SysfsRoot, "class", "net")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("netlink source: list interfaces: %w", err)
	}

	var out []link
	for _, e := range entries {
		name := e.Name()
		if name == "lo" {
			continue
		}
		dir := filepath.Join(base, name)
		if !isUp(dir) {
			continue
		}
		out = append(out, link{name: name, kind: kindOf(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// isUp accepts operstate "up", or "unknown" with carrier (common for
// point-to-point modem interfaces).
func isUp(dir string) bool {
	switch readTrim(filepath.Join(dir, "operstate")) {
	case "up":
		return true
	case "unknown":
		return readTrim(filepath.Join(dir, "carrier")) == "1"
	}
	return false
}

func kindOf(dir, name string) linkKind {
	if exists(filepath.Join(dir, "wireless")) || exists(filepath.Join(dir, "phy80211")) {
		return linkWireless
	}
	if ueventDevtype(filepath.Join(dir, "uevent")) == "wwan" {
		return linkCellular
	}
	for _, p := range cellularPrefixes {
		if strings.HasPrefix(name, p) {
			return linkCellular
		}
	}
	return linkWired
}

func (s *Source) readRAT() string {
	if s.cfg.RATFile == "" {
		return ""
	}
	b, err := os.ReadFile(s.cfg.RATFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("netlink source: read rat file", zap.Error(err))
		}
		return ""
	}
	return netclass.NormalizeRAT(string(b))
}

func ueventDevtype(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if v, ok := strings.CutPrefix(sc.Text(), "DEVTYPE="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func readTrim(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
