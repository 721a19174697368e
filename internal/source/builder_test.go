// internal/source/builder_test.go
package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/netclass/internal/config"
	"github.com/tamzrod/netclass/internal/netclass"
	"github.com/tamzrod/netclass/internal/source/netlink"
)

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(config.SourceConfig{Kind: "reachability"}, nil)
	assert.Error(t, err)
}

func TestBuild_Netlink(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "class", "net"), 0o755))

	off := false
	f, err := Build(config.SourceConfig{
		Kind: config.SourceNetlink,
		Netlink: config.NetlinkSource{
			SysfsRoot:   root,
			WiredAsWiFi: &off,
		},
	}, nil)
	require.NoError(t, err)

	src, err := f()
	require.NoError(t, err)
	require.IsType(t, &netlink.Source{}, src)

	// empty sysfs tree: no active interface
	r, err := src.Reading()
	require.NoError(t, err)
	assert.Equal(t, netclass.KindNone, r.Interface)
}

func TestBuild_ModbusConnectFailure(t *testing.T) {
	f, err := Build(config.SourceConfig{
		Kind: config.SourceModbus,
		Modbus: config.ModbusSource{
			Mode:       "tcp",
			Endpoint:   "127.0.0.1:1",
			TimeoutMs:  200,
			IntervalMs: 1000,
		},
	}, nil)
	require.NoError(t, err)

	_, err = f()
	assert.Error(t, err, "nothing listens on port 1")
}
