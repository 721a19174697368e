// internal/source/netlink/netlink_linux.go

//go:build linux

package netlink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// recvTimeout bounds how long Stop waits for the receive loop.
const recvTimeout = 500 * time.Millisecond

const groups = unix.RTMGRP_LINK |
	unix.RTMGRP_IPV4_IFADDR |
	unix.RTMGRP_IPV6_IFADDR |
	unix.RTMGRP_IPV4_ROUTE |
	unix.RTMGRP_IPV6_ROUTE

// Start subscribes to rtnetlink link, address and route notifications.
// onChange is called from the receive goroutine once per relevant datagram.
func (s *Source) Start(onChange func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("netlink source: already started")
	}

	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return fmt.Errorf("netlink source: socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: groups}); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("netlink source: bind: %w", err)
	}
	tv := unix.NsecToTimeval(recvTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("netlink source: set receive timeout: %w", err)
	}

	s.fd = fd
	s.running = true
	s.stopped = make(chan struct{})
	s.done = make(chan struct{})

	go s.listen(fd, onChange, s.stopped, s.done)

	s.log.Debug("netlink source: listening", zap.Int("groups", groups))
	return nil
}

// Stop ends the receive loop and closes the socket.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stopped)
	<-s.done

	fd := s.fd
	s.fd = -1
	s.running = false

	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("netlink source: close: %w", err)
	}
	return nil
}

func (s *Source) listen(fd int, onChange func(), stopped <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	buf := make([]byte, 1<<16)
	for {
		select {
		case <-stopped:
			return
		default:
		}

		n, _, err := unix.Recvfrom(fd, buf, 0)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.ENOBUFS):
				// Kernel dropped notifications; state may have moved.
				s.log.Debug("netlink source: receive overrun")
			default:
				// Notifier is dead; let listeners re-read once.
				s.log.Error("netlink source: receive failed", zap.Error(err))
				onChange()
				return
			}
		} else if !relevant(buf[:n]) {
			continue
		}

		select {
		case <-stopped:
			return
		default:
		}
		onChange()
	}
}

// relevant reports whether a datagram carries a link, address or route
// change. Malformed datagrams are treated as relevant.
func relevant(b []byte) bool {
	for len(b) >= unix.NLMSG_HDRLEN {
		h := unix.NlMsghdr{
			Len:  binary.NativeEndian.Uint32(b[0:4]),
			Type: binary.NativeEndian.Uint16(b[4:6]),
		}
		if h.Len < unix.NLMSG_HDRLEN || int(h.Len) > len(b) {
			return true
		}
		switch h.Type {
		case unix.RTM_NEWLINK, unix.RTM_DELLINK,
			unix.RTM_NEWADDR, unix.RTM_DELADDR,
			unix.RTM_NEWROUTE, unix.RTM_DELROUTE:
			return true
		}
		next := (int(h.Len) + unix.NLMSG_ALIGNTO - 1) &^ (unix.NLMSG_ALIGNTO - 1)
		if next >= len(b) {
			break
		}
		b = b[next:]
	}
	return false
}
