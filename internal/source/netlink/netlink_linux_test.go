// internal/source/netlink/netlink_linux_test.go

//go:build linux

package netlink

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func nlmsg(typ uint16) []byte {
	b := make([]byte, unix.NLMSG_HDRLEN)
	binary.NativeEndian.PutUint32(b[0:4], uint32(unix.NLMSG_HDRLEN))
	binary.NativeEndian.PutUint16(b[4:6], typ)
	return b
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant(nlmsg(unix.RTM_NEWLINK)))
	assert.True(t, relevant(nlmsg(unix.RTM_DELADDR)))
	assert.True(t, relevant(nlmsg(unix.RTM_NEWROUTE)))
	assert.False(t, relevant(nlmsg(unix.RTM_NEWNEIGH)))
	assert.True(t, relevant(append(nlmsg(unix.RTM_NEWNEIGH), nlmsg(unix.RTM_DELLINK)...)))

	truncated := nlmsg(unix.RTM_NEWNEIGH)
	binary.NativeEndian.PutUint32(truncated[0:4], 64)
	assert.True(t, relevant(truncated), "malformed datagram")

	short := nlmsg(unix.RTM_NEWNEIGH)
	binary.NativeEndian.PutUint32(short[0:4], 8)
	assert.True(t, relevant(short), "length below header size")

	assert.False(t, relevant(nil))
	assert.False(t, relevant([]byte{1, 2, 3}), "trailing bytes shorter than a header")

	// unaligned length: next header starts on the 4-byte boundary
	padded := make([]byte, unix.NLMSG_HDRLEN+4)
	binary.NativeEndian.PutUint32(padded[0:4], uint32(unix.NLMSG_HDRLEN+1))
	binary.NativeEndian.PutUint16(padded[4:6], unix.RTM_NEWNEIGH)
	assert.True(t, relevant(append(padded, nlmsg(unix.RTM_NEWADDR)...)))
}

func TestListen_ReceiveFailureNotifiesOnce(t *testing.T) {
	s := New(Config{SysfsRoot: t.TempDir()}, nil)

	var calls int
	stopped := make(chan struct{})
	done := make(chan struct{})

	// fd -1 fails with EBADF on the first receive
	go s.listen(-1, func() { calls++ }, stopped, done)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("listen did not return after a receive failure")
	}
	assert.Equal(t, 1, calls)
}

func TestStartStop(t *testing.T) {
	s := New(Config{SysfsRoot: t.TempDir()}, nil)
	if err := s.Start(func() {}); err != nil {
		t.Skipf("netlink socket unavailable: %v", err)
	}
	assert.Error(t, s.Start(func() {}), "double start")
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}
